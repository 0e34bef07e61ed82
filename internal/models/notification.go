package models

// Notification is a transient toast request for the host UI.
type Notification struct {
	Message     string              `json:"message"`
	Description string              `json:"description,omitempty"`
	Action      *NotificationAction `json:"action,omitempty"`
}

// NotificationAction is the optional button on a toast. Run is the in-process
// callback; HTTP clients use Method and Path instead.
type NotificationAction struct {
	Label  string `json:"label"`
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	Run    func() `json:"-"`
}
