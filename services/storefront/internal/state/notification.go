package state

import (
	"sync"
	"time"

	"onlinemall/pkg/domain"
)

// DefaultNotificationDuration is how long a notification stays visible when
// the caller does not say.
const DefaultNotificationDuration = 3 * time.Second

// Timer is the part of *time.Timer the notifier needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the production choice.
type AfterFunc func(d time.Duration, f func()) Timer

// NotifierConfig tunes a Notifier. Zero values select the defaults.
type NotifierConfig struct {
	Duration  time.Duration
	AfterFunc AfterFunc
}

// Notifier is a single notification slot with at most one pending hide timer.
// Showing a message preempts whatever is visible.
type Notifier struct {
	mu        sync.Mutex
	current   domain.Notification
	timer     Timer
	gen       uint64
	duration  time.Duration
	afterFunc AfterFunc
	listeners []func(domain.Notification)
}

func NewNotifier(cfg NotifierConfig) *Notifier {
	duration := cfg.Duration
	if duration <= 0 {
		duration = DefaultNotificationDuration
	}
	afterFunc := cfg.AfterFunc
	if afterFunc == nil {
		afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	return &Notifier{
		current:   domain.Notification{Type: domain.NotificationSuccess},
		duration:  duration,
		afterFunc: afterFunc,
	}
}

// Show displays message and schedules it to hide after d. An empty type means
// success and a non-positive d means the configured default.
func (n *Notifier) Show(message string, typ domain.NotificationType, d time.Duration) {
	if typ == "" {
		typ = domain.NotificationSuccess
	}
	n.mu.Lock()
	if d <= 0 {
		d = n.duration
	}
	n.stopTimerLocked()
	n.gen++
	gen := n.gen
	n.current = domain.Notification{Visible: true, Message: message, Type: typ}
	n.timer = n.afterFunc(d, func() { n.expire(gen) })
	current, listeners := n.current, n.listeners
	n.mu.Unlock()

	notify(listeners, current)
}

func (n *Notifier) Success(message string) {
	n.Show(message, domain.NotificationSuccess, 0)
}

func (n *Notifier) Error(message string) {
	n.Show(message, domain.NotificationError, 0)
}

// Hide hides the current notification and cancels its timer.
func (n *Notifier) Hide() {
	n.mu.Lock()
	n.stopTimerLocked()
	n.gen++
	changed := n.current.Visible
	n.current.Visible = false
	current, listeners := n.current, n.listeners
	n.mu.Unlock()

	if changed {
		notify(listeners, current)
	}
}

func (n *Notifier) Current() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// OnChange registers fn to be called after every visible change. Listeners
// run on the goroutine that made the change, outside the lock.
func (n *Notifier) OnChange(fn func(domain.Notification)) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// expire hides the notification shown at generation gen. A timer that fires
// after a newer Show or Hide is a no-op.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.current.Visible = false
	current, listeners := n.current, n.listeners
	n.mu.Unlock()

	notify(listeners, current)
}

func (n *Notifier) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func notify(listeners []func(domain.Notification), current domain.Notification) {
	for _, fn := range listeners {
		fn(current)
	}
}
