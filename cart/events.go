package cart

// EventType names a change the presentation layer may react to, such as
// sliding the cart panel open after an add.
type EventType int

const (
	EventItemAdded EventType = iota
	EventLineUpdated
	EventLineRemoved
	EventCleared
	EventCartOpened
)

func (t EventType) String() string {
	switch t {
	case EventItemAdded:
		return "item_added"
	case EventLineUpdated:
		return "line_updated"
	case EventLineRemoved:
		return "line_removed"
	case EventCleared:
		return "cleared"
	case EventCartOpened:
		return "cart_opened"
	default:
		return "unknown"
	}
}

// Event carries a copy of the affected line when there is one.
type Event struct {
	Type EventType
	Line *Line
}

type Listener func(Event)
