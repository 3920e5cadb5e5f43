// Package tick provides check-and-advance scheduling for the trading loop.
//
// A Manager tracks when its owner is next due, optionally restricted to a
// daily time window, and advances itself when the owner consumes a tick.
// Managers are owned by exactly one component and are only touched from the
// single-threaded platform loop, so they carry no locks.
package tick

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Common intervals.
const (
	ThirtySeconds = 30 * time.Second
	OneMinute     = time.Minute
	FiveMinutes   = 5 * time.Minute
	OneHour       = time.Hour
)

var (
	// ErrInvalidInterval is returned for non-positive tick intervals.
	ErrInvalidInterval = errors.New("tick interval must be positive")

	// ErrInvalidWindow is returned for windows with start after end.
	// Overnight windows are unsupported.
	ErrInvalidWindow = errors.New("window start must not be after end")

	// ErrNoMarks is returned when aligning to an empty set of minute marks.
	ErrNoMarks = errors.New("minute marks must not be empty")
)

// TimeOfDay is a wall-clock time within a day, minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// before reports whether t is strictly earlier in the day than o.
func (t TimeOfDay) before(o TimeOfDay) bool {
	return t.Hour < o.Hour || (t.Hour == o.Hour && t.Minute < o.Minute)
}

// Window restricts ticks to a daily [Start, End] wall-clock range, inclusive
// at both ends.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Manager tracks whether an action is due. The next-due time only ever
// moves forward.
type Manager struct {
	name     string
	interval time.Duration
	window   *Window
	loc      *time.Location
	next     time.Time
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithWindow restricts ticks to a daily wall-clock window.
func WithWindow(start, end TimeOfDay) Option {
	return func(m *Manager) {
		m.window = &Window{Start: start, End: end}
	}
}

// WithLocation sets the timezone the window and minute marks are evaluated
// in. Defaults to America/New_York, the venue's settlement timezone.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		m.loc = loc
	}
}

// WithName sets the owner name used in log lines.
func WithName(name string) Option {
	return func(m *Manager) {
		m.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager that is immediately due.
func New(interval time.Duration, opts ...Option) (*Manager, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	m := &Manager{
		name:     "unnamed",
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.loc == nil {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			return nil, fmt.Errorf("load default location: %w", err)
		}
		m.loc = loc
	}

	if m.window != nil && m.window.End.before(m.window.Start) {
		return nil, ErrInvalidWindow
	}

	return m, nil
}

// Interval returns the configured tick interval.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// NextDue returns the time the manager next becomes ready. Owners use it to
// detect trading-day rollover.
func (m *Manager) NextDue() time.Time {
	return m.next
}

// Ready reports whether a tick is due at now. When the interval has elapsed
// but now lies outside the window, the next-due time snaps forward to the
// next window start so repeated calls skip the window math until then.
func (m *Manager) Ready(now time.Time) bool {
	if now.Before(m.next) {
		return false
	}
	return m.inWindow(now)
}

// ReadyWithAdvance calls Ready and, when due, advances the next-due time by
// one interval. Calling twice with the same timestamp yields true then false.
func (m *Manager) ReadyWithAdvance(now time.Time) bool {
	if !m.Ready(now) {
		return false
	}
	m.next = now.Add(m.interval)
	return true
}

// AlignToMinuteMarks sets the next-due time to the nearest upcoming
// wall-clock minute mark, wrapping at the hour boundary. Used by collectors
// that follow fixed publication schedules rather than fixed intervals.
func (m *Manager) AlignToMinuteMarks(now time.Time, marks []int) error {
	if len(marks) == 0 {
		return ErrNoMarks
	}
	for _, mark := range marks {
		if mark < 0 || mark > 59 {
			return fmt.Errorf("minute mark %d out of range [0, 59]", mark)
		}
	}

	local := now.In(m.loc)
	cur := local.Minute()

	next, wrapped := 60, true
	lowest := 60
	for _, mark := range marks {
		if mark < lowest {
			lowest = mark
		}
		if mark > cur && mark < next {
			next = mark
			wrapped = false
		}
	}

	var delta int
	if wrapped {
		delta = (60 - cur) + lowest
	} else {
		delta = next - cur
	}

	m.next = local.Truncate(time.Minute).Add(time.Duration(delta) * time.Minute)
	return nil
}

// inWindow reports whether now's local time of day lies inside the window,
// snapping the next-due time to the upcoming window start when it does not.
func (m *Manager) inWindow(now time.Time) bool {
	if m.window == nil {
		return true
	}

	local := now.In(m.loc)
	tod := TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}

	if tod.before(m.window.Start) {
		m.next = m.windowStartOn(local)
		m.logger.Info("before window, deferring",
			"name", m.name,
			"next", m.next,
		)
		return false
	}
	if m.window.End.before(tod) {
		m.next = m.windowStartOn(local.AddDate(0, 0, 1))
		m.logger.Info("after window, deferring to next day",
			"name", m.name,
			"next", m.next,
		)
		return false
	}
	return true
}

// windowStartOn returns the window start on day's date.
func (m *Manager) windowStartOn(day time.Time) time.Time {
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		m.window.Start.Hour, m.window.Start.Minute, 0, 0,
		m.loc,
	)
}
