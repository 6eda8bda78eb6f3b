// Package export renders stored bookings into downloadable documents for the
// review console. Identifier, owner and audit columns stay out of the output.
package export

import (
	"roomdesk/internal/domains/booking/model"
	"roomdesk/shared/constant"
	"strconv"
)

var header = []string{
	"Title",
	"Requester Name",
	"Contact",
	"Organization Unit",
	"Room",
	"Party Size",
	"Start Date",
	"Start Time",
	"End Date",
	"End Time",
	"Approved",
}

func record(b model.Booking) []string {
	approved := "No"
	if b.Approved {
		approved = "Yes"
	}

	return []string{
		b.Title,
		b.RequesterName,
		b.Contact,
		b.OrganizationUnit,
		b.RoomName,
		strconv.Itoa(b.PartySize),
		b.StartDate.Format(constant.DateOnlyFormat),
		b.StartTime.Format(constant.TimeOnlyFormat),
		b.EndDate.Format(constant.DateOnlyFormat),
		b.EndTime.Format(constant.TimeOnlyFormat),
		approved,
	}
}
