package presence

// Notifier surfaces presence and message events outside the main view, the
// way a browser tab uses system notifications. Implementations must accept
// calls from any goroutine.
type Notifier interface {
	Notify(title, body string)
}

// NopNotifier discards every notification. Used when the host environment
// has no notification surface or the user declined them.
type NopNotifier struct{}

func (NopNotifier) Notify(title, body string) {}
