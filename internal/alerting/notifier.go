package alerting

import "context"

// Notification carries everything a channel needs to push one alert.
type Notification struct {
	Mode   Mode
	Action Action
	Zone   string
	Actor  string
	Text   string
}

// Notifier is the uniform contract every notification channel implements.
// Implementations must respect the supplied context deadline and must not
// panic across the engine boundary; retry policy is channel-local.
type Notifier interface {
	// Name identifies the channel in logs and metrics (e.g. "cisco").
	Name() string

	// Notify pushes one alert through the channel.
	Notify(ctx context.Context, n Notification) error
}
