package tick

import (
	"errors"
	"testing"
	"time"
)

var nyc = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

// at builds a local NYC timestamp on a fixed summer date.
func at(hour, minute, second int) time.Time {
	return time.Date(2025, time.August, 14, hour, minute, second, 0, nyc)
}

func TestNew_InvalidInterval(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("New(0) err = %v, want ErrInvalidInterval", err)
	}
	if _, err := New(-time.Second); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("New(-1s) err = %v, want ErrInvalidInterval", err)
	}
}

func TestNew_InvalidWindow(t *testing.T) {
	_, err := New(time.Minute,
		WithWindow(TimeOfDay{Hour: 14}, TimeOfDay{Hour: 13}),
		WithLocation(nyc),
	)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("overnight window err = %v, want ErrInvalidWindow", err)
	}
}

func TestReadyWithAdvance_TrueThenFalse(t *testing.T) {
	m, err := New(30*time.Second, WithLocation(nyc))
	if err != nil {
		t.Fatal(err)
	}

	now := at(10, 0, 0)
	if !m.ReadyWithAdvance(now) {
		t.Fatal("first call should be ready")
	}
	if m.ReadyWithAdvance(now) {
		t.Error("second call with same timestamp should not be ready")
	}
	if m.ReadyWithAdvance(now.Add(29 * time.Second)) {
		t.Error("should not be ready before interval elapses")
	}
	if !m.ReadyWithAdvance(now.Add(30 * time.Second)) {
		t.Error("should be ready exactly at next due")
	}
}

func TestReady_DoesNotAdvance(t *testing.T) {
	m, err := New(time.Minute, WithLocation(nyc))
	if err != nil {
		t.Fatal(err)
	}

	now := at(10, 0, 0)
	if !m.Ready(now) {
		t.Fatal("should be ready")
	}
	if !m.Ready(now) {
		t.Error("Ready must not consume the tick")
	}
}

func TestReady_OutsideWindow(t *testing.T) {
	m, err := New(time.Second,
		WithWindow(TimeOfDay{Hour: 13}, TimeOfDay{Hour: 14}),
		WithLocation(nyc),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Before the window: never ready, regardless of elapsed interval.
	if m.Ready(at(9, 30, 0)) {
		t.Error("9:30 is before the window")
	}
	want := at(13, 0, 0)
	if !m.NextDue().Equal(want) {
		t.Errorf("NextDue = %v, want snap to window start %v", m.NextDue(), want)
	}

	// Snapped next-due suppresses re-evaluation until the window opens.
	if m.Ready(at(10, 0, 0)) {
		t.Error("still before window start")
	}

	if !m.Ready(at(13, 0, 5)) {
		t.Error("inside window should be ready")
	}

	// End is inclusive at minute resolution.
	m2, _ := New(time.Second,
		WithWindow(TimeOfDay{Hour: 13}, TimeOfDay{Hour: 14}),
		WithLocation(nyc),
	)
	if !m2.Ready(at(14, 0, 30)) {
		t.Error("14:00 should still be inside the window")
	}
}

func TestReady_AfterWindowSnapsToNextDay(t *testing.T) {
	m, err := New(time.Second,
		WithWindow(TimeOfDay{Hour: 13}, TimeOfDay{Hour: 14}),
		WithLocation(nyc),
	)
	if err != nil {
		t.Fatal(err)
	}

	if m.Ready(at(15, 0, 0)) {
		t.Error("15:00 is after the window")
	}
	want := at(13, 0, 0).AddDate(0, 0, 1)
	if !m.NextDue().Equal(want) {
		t.Errorf("NextDue = %v, want next-day window start %v", m.NextDue(), want)
	}
}

func TestAlignToMinuteMarks(t *testing.T) {
	m, err := New(time.Minute, WithLocation(nyc))
	if err != nil {
		t.Fatal(err)
	}

	marks := []int{5, 25, 45}

	// 10:07 -> next mark 10:25.
	if err := m.AlignToMinuteMarks(at(10, 7, 12), marks); err != nil {
		t.Fatal(err)
	}
	if want := at(10, 25, 0); !m.NextDue().Equal(want) {
		t.Errorf("NextDue = %v, want %v", m.NextDue(), want)
	}

	// 10:50 wraps to 11:05.
	if err := m.AlignToMinuteMarks(at(10, 50, 0), marks); err != nil {
		t.Fatal(err)
	}
	if want := at(11, 5, 0); !m.NextDue().Equal(want) {
		t.Errorf("NextDue = %v, want %v", m.NextDue(), want)
	}

	// A timestamp exactly on a mark moves to the following mark.
	if err := m.AlignToMinuteMarks(at(10, 25, 0), marks); err != nil {
		t.Fatal(err)
	}
	if want := at(10, 45, 0); !m.NextDue().Equal(want) {
		t.Errorf("NextDue = %v, want %v", m.NextDue(), want)
	}
}

func TestAlignToMinuteMarks_Errors(t *testing.T) {
	m, err := New(time.Minute, WithLocation(nyc))
	if err != nil {
		t.Fatal(err)
	}

	if err := m.AlignToMinuteMarks(at(10, 0, 0), nil); !errors.Is(err, ErrNoMarks) {
		t.Errorf("empty marks err = %v, want ErrNoMarks", err)
	}
	if err := m.AlignToMinuteMarks(at(10, 0, 0), []int{60}); err == nil {
		t.Error("mark 60 should be rejected")
	}
	if err := m.AlignToMinuteMarks(at(10, 0, 0), []int{-1}); err == nil {
		t.Error("negative mark should be rejected")
	}
}
