package api

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Notification struct {
	Title    string
	Message  string
	Severity Severity
}

// Notifier receives user-facing transient notices. Implementations must not
// block.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier discards everything; useful as a default and in tests.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
