package model

import (
	"time"

	"roomdesk/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID               = "id"
	FieldTitle            = "title"
	FieldRequesterName    = "requester_name"
	FieldContact          = "contact"
	FieldOrganizationUnit = "organization_unit"
	FieldRoomID           = "room_id"
	FieldPartySize        = "party_size"
	FieldStartDate        = "start_date"
	FieldStartTime        = "start_time"
	FieldEndDate          = "end_date"
	FieldEndTime          = "end_time"
	FieldApproved         = "approved"
	FieldCreatedBy        = "created_by"

	// ExprEndTimestamp recombines the split date and time columns so the
	// active-bookings predicate can compare against a single instant.
	ExprEndTimestamp = "(bookings.end_date + bookings.end_time)"
)

type Booking struct {
	ID               string    `db:"id"`
	Title            string    `db:"title"`
	RequesterName    string    `db:"requester_name"`
	Contact          string    `db:"contact"`
	OrganizationUnit string    `db:"organization_unit"`
	RoomID           string    `db:"room_id"`
	PartySize        int       `db:"party_size"`
	StartDate        time.Time `db:"start_date"`
	StartTime        time.Time `db:"start_time"`
	EndDate          time.Time `db:"end_date"`
	EndTime          time.Time `db:"end_time"`
	Approved         bool      `db:"approved"`
	RoomName         string    `db:"room_name" table:"rooms" column:"name"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = bookings.room_id"
}

// StartAt combines the split start columns into a single instant.
func (b Booking) StartAt() time.Time {
	return combine(b.StartDate, b.StartTime)
}

// EndAt combines the split end columns into a single instant.
func (b Booking) EndAt() time.Time {
	return combine(b.EndDate, b.EndTime)
}

func combine(date, clock time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		date.Location(),
	)
}
