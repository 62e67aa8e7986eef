package backend

// Event is a payload-free trigger pushed to the UI.
type Event string

const (
	EventFocusSearch  Event = "focusSearch"
	EventFocusCapture Event = "focusCapture"
)

// ParseEvent maps a short name ("search", "capture") or a full event name to an Event.
func ParseEvent(name string) (Event, bool) {
	switch name {
	case "search", string(EventFocusSearch):
		return EventFocusSearch, true
	case "capture", string(EventFocusCapture):
		return EventFocusCapture, true
	default:
		return "", false
	}
}
