package ports

import "time"

// PowerController arms wake alarms and requests device resets. Deep sleep
// itself is a process exit; the controller only persists what the external
// wake supervisor needs to restart the node.
type PowerController interface {
	ArmWake(at time.Time) error
	Reset() error
}
