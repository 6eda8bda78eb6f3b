package events

import "time"

// Type enumerates booking lifecycle events published to the broker.
type Type string

const (
	TypeBookingCreated  Type = "booking.created"
	TypeBookingUpdated  Type = "booking.updated"
	TypeBookingDeleted  Type = "booking.deleted"
	TypeBookingApproved Type = "booking.approved"
	TypeBookingRejected Type = "booking.rejected"
)

// BookingEvent is the payload written to the booking events topic.
// The key is the booking id so consumers see per-booking ordering.
type BookingEvent struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"booking_id"`
	RoomID     string    `json:"room_id"`
	OwnerID    string    `json:"owner_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
