package speaker

import "time"

const (
	// DefaultRequestTimeout is the base time to wait for a command reply.
	// Commands with a timeout multiplier (grouping) wait proportionally
	// longer.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultDialTimeout bounds the TCP connect to a speaker.
	DefaultDialTimeout = 5 * time.Second
)

type options struct {
	port           int
	user           string
	requestTimeout time.Duration
	dialTimeout    time.Duration
	queueSize      int
}

func defaultOptions() options {
	return options{
		port:           DefaultPort,
		requestTimeout: DefaultRequestTimeout,
		dialTimeout:    DefaultDialTimeout,
		queueSize:      0, // dispatcher default
	}
}

// Option configures a Speaker.
type Option func(*options)

// WithPort overrides the speaker control port.
func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithUser sets the client identifier sent with every request. Replies are
// matched against it. Defaults to a random identifier per Speaker.
func WithUser(user string) Option {
	return func(o *options) { o.user = user }
}

// WithRequestTimeout sets the base reply timeout for commands.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithDialTimeout bounds the TCP connect.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithQueueSize sets the event queue capacity.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}
