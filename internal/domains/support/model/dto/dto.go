package dto

// SupportMessageRequest is forwarded verbatim to the admin webhook; support
// messages are never persisted here.
type SupportMessageRequest struct {
	Name          string `json:"name"           validate:"required,max=100"`
	ContactNumber string `json:"contact_number" validate:"required,max=50"`
	Division      string `json:"division"       validate:"required,max=100"`
	Message       string `json:"message"        validate:"required"`
}
