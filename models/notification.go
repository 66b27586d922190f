package models

// NotificationPayload is the body of a queued notification task.
type NotificationPayload struct {
	Target  Role   `json:"target"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Booking string `json:"booking,omitempty"`
}
