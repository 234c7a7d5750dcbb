// Package newsletter drives the subscribe form: idle, submitting, then
// success or error. An errored form can be submitted again; a successful one
// stays successful.
package newsletter

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	msgInvalidEmail = "Please enter a valid email address"
	msgFailed       = "Subscription failed, please try again"
)

// Subscriber performs the actual subscription, usually over the network.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) error
}

// Snapshot is what the form renders.
type Snapshot struct {
	State    State
	Email    string
	Message  string
	Disabled bool
}

type Listener func(Snapshot)

type Flow struct {
	subscriber Subscriber
	logger     *zap.Logger

	mu        sync.Mutex
	state     State
	email     string
	message   string
	lastErr   error
	listeners []Listener
}

type Option func(*Flow)

func WithLogger(l *zap.Logger) Option {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithListener registers l for success and error outcomes.
func WithListener(l Listener) Option {
	return func(f *Flow) {
		f.listeners = append(f.listeners, l)
	}
}

func NewFlow(subscriber Subscriber, opts ...Option) *Flow {
	f := &Flow{
		subscriber: subscriber,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetEmail updates the input and returns an errored form to idle. It is
// ignored while the input is disabled.
func (f *Flow) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disabled() {
		return
	}
	if f.state == StateError {
		f.state = StateIdle
		f.message = ""
	}
	f.email = email
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// HandleSubscribe validates the email and starts the subscription call. The
// returned channel is closed once the call has finished and the state has
// settled. A submit while one is in flight is rejected, never queued.
func (f *Flow) HandleSubscribe(ctx context.Context) (<-chan struct{}, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateSuccess:
		f.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}

	email := strings.TrimSpace(f.email)
	if !ValidEmail(email) {
		f.state = StateIdle
		f.message = msgInvalidEmail
		f.mu.Unlock()
		return nil, &ValidationError{Email: email, Message: msgInvalidEmail}
	}
	f.state = StateSubmitting
	f.message = ""
	f.lastErr = nil
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.finish(email, f.subscriber.Subscribe(ctx, email))
	}()
	return done, nil
}

// Subscribe runs HandleSubscribe and waits for the outcome. It returns the
// subscriber's error, if any.
func (f *Flow) Subscribe(ctx context.Context) error {
	done, err := f.HandleSubscribe(ctx)
	if err != nil {
		return err
	}
	<-done

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateError {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, f.lastErr)
	}
	return nil
}

func (f *Flow) finish(email string, err error) {
	f.mu.Lock()
	if err != nil {
		f.logger.Warn("newsletter subscription failed", zap.Error(err))
		f.state = StateError
		f.message = msgFailed
		f.lastErr = err
	} else {
		f.logger.Info("newsletter subscription", zap.String("domain", emailDomain(email)))
		f.state = StateSuccess
	}
	snap := f.snapshot()
	listeners := f.listeners
	f.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (f *Flow) disabled() bool {
	return f.state == StateSubmitting || f.state == StateSuccess
}

func (f *Flow) snapshot() Snapshot {
	return Snapshot{
		State:    f.state,
		Email:    f.email,
		Message:  f.message,
		Disabled: f.disabled(),
	}
}

// ValidEmail is a minimal format check: a single address with a dotted domain.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domain := emailDomain(email)
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}
