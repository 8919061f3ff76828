package types

// Event is the structured payload attached to every market notification.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
