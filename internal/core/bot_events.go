package core

type SystemEventType int

const (
	SystemEventRefreshCommands SystemEventType = iota
)

type SystemEvent struct {
	Type    SystemEventType
	GuildID string
	Target  string // "all", "group:<name>" or a command name
}

var systemEvents = make(chan SystemEvent, 32)

// PublishSystemEvent never blocks; events beyond the buffer are dropped.
func PublishSystemEvent(ev SystemEvent) bool {
	select {
	case systemEvents <- ev:
		return true
	default:
		return false
	}
}

func SystemEvents() <-chan SystemEvent {
	return systemEvents
}
