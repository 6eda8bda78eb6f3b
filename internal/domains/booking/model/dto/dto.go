package dto

import (
	"time"

	"github.com/google/uuid"

	"roomdesk/internal/domains/booking/model"
	"roomdesk/shared"
	"roomdesk/shared/constant"
	gDto "roomdesk/shared/dto"
	gModel "roomdesk/shared/model"
	"roomdesk/shared/timezone"
)

type CreateBookingRequest struct {
	Title            string `json:"title"             validate:"required,max=200"`
	RequesterName    string `json:"requester_name"    validate:"required,max=100"`
	Contact          string `json:"contact"           validate:"required,max=50"`
	OrganizationUnit string `json:"organization_unit" validate:"required,max=100"`
	RoomID           string `json:"room_id"           validate:"required,uuid"`
	PartySize        int    `json:"party_size"        validate:"required,gt=0"`
	StartAt          string `json:"start_at"          validate:"required"`
	EndAt            string `json:"end_at"            validate:"required"`
}

func (c *CreateBookingRequest) ToModel(user string) (model.Booking, error) {
	startAt, err := time.Parse(constant.DateTimeFormat, c.StartAt)
	if err != nil {
		return model.Booking{}, err
	}

	endAt, err := time.Parse(constant.DateTimeFormat, c.EndAt)
	if err != nil {
		return model.Booking{}, err
	}

	startDate, startTime := SplitInstant(startAt)
	endDate, endTime := SplitInstant(endAt)

	return model.Booking{
		ID:               uuid.NewString(),
		Title:            c.Title,
		RequesterName:    c.RequesterName,
		Contact:          c.Contact,
		OrganizationUnit: c.OrganizationUnit,
		RoomID:           c.RoomID,
		PartySize:        c.PartySize,
		StartDate:        startDate,
		StartTime:        startTime,
		EndDate:          endDate,
		EndTime:          endTime,
		Approved:         false,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateBookingRequest struct {
	Title            string `db:"title"             json:"title"             validate:"omitempty,max=200"`
	RequesterName    string `db:"requester_name"    json:"requester_name"    validate:"omitempty,max=100"`
	Contact          string `db:"contact"           json:"contact"           validate:"omitempty,max=50"`
	OrganizationUnit string `db:"organization_unit" json:"organization_unit" validate:"omitempty,max=100"`
	RoomID           string `db:"room_id"           json:"room_id"           validate:"omitempty,uuid"`
	PartySize        int    `db:"party_size"        json:"party_size"        validate:"omitempty,gt=0"`
	StartAt          string `json:"start_at"        validate:"omitempty"`
	EndAt            string `json:"end_at"          validate:"omitempty"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ExportBookingsRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"   validate:"required"`
	Format    string `json:"format"     validate:"omitempty,oneof=csv xlsx"`
}

// ExportResult carries a rendered export document back to the transport layer.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

type BookingResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	RequesterName    string `json:"requester_name"`
	Contact          string `json:"contact"`
	OrganizationUnit string `json:"organization_unit"`
	RoomID           string `json:"room_id"`
	RoomName         string `json:"room_name"`
	PartySize        int    `json:"party_size"`
	StartDate        string `json:"start_date"`
	StartTime        string `json:"start_time"`
	EndDate          string `json:"end_date"`
	EndTime          string `json:"end_time"`
	Approved         bool   `json:"approved"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.Title = model.Title
	r.RequesterName = model.RequesterName
	r.Contact = model.Contact
	r.OrganizationUnit = model.OrganizationUnit
	r.RoomID = model.RoomID
	r.RoomName = model.RoomName
	r.PartySize = model.PartySize
	r.StartDate = model.StartDate.Format(constant.DateOnlyFormat)
	r.StartTime = model.StartTime.Format(constant.TimeOnlyFormat)
	r.EndDate = model.EndDate.Format(constant.DateOnlyFormat)
	r.EndTime = model.EndTime.Format(constant.TimeOnlyFormat)
	r.Approved = model.Approved
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// SplitInstant breaks an instant into the date and clock components the
// bookings table stores in separate columns.
func SplitInstant(at time.Time) (date, clock time.Time) {
	date = time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	clock = time.Date(0, time.January, 1, at.Hour(), at.Minute(), 0, 0, at.Location())

	return date, clock
}
