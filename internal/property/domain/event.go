package domain

// PropertyEvent is the payload published for directory events. Counter
// fields are set only by the increment operations that produced them.
type PropertyEvent struct {
	PropertyID      string `json:"property_id"`
	Title           string `json:"title,omitempty"`
	Views           int64  `json:"views,omitempty"`
	ContactRequests int64  `json:"contact_requests,omitempty"`
}
