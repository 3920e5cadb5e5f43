package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *TraderConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}
	if _, err := time.LoadLocation(c.Instance.Timezone); err != nil {
		return fmt.Errorf("instance.timezone: %w", err)
	}

	if c.API.APIKey == "" {
		return errors.New("api.api_key is required")
	}
	if c.API.PrivateKeyPath == "" {
		return errors.New("api.private_key_path is required")
	}

	if err := validateMarks("weather.minute_marks", c.Weather.MinuteMarks); err != nil {
		return err
	}

	if c.Database.Enabled {
		if err := c.Database.validate(); err != nil {
			return err
		}
		if err := validateMarks("recorder.snapshot_minute_marks", c.Recorder.SnapshotMinuteMarks); err != nil {
			return err
		}
		if c.Recorder.BatchSize < 1 {
			return errors.New("recorder.batch_size must be >= 1")
		}
		if c.Recorder.BufferSize < 1 {
			return errors.New("recorder.buffer_size must be >= 1")
		}
		if c.Recorder.Concurrency < 1 {
			return errors.New("recorder.concurrency must be >= 1")
		}
	}

	seen := make(map[string]bool, len(c.Strategies))
	for _, s := range c.Strategies {
		if err := s.validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate strategy name %q", s.Name)
		}
		seen[s.Name] = true
	}

	return nil
}

func (db *DatabaseConfig) validate() error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.Name == "" {
		return errors.New("database.name is required")
	}
	if db.User == "" {
		return errors.New("database.user is required")
	}
	if db.Password == "" {
		return errors.New("database.password is required")
	}
	if db.MaxConns < 1 {
		return errors.New("database.max_conns must be >= 1")
	}
	if db.MinConns < 0 {
		return errors.New("database.min_conns must be >= 0")
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)", db.MinConns, db.MaxConns)
	}
	return nil
}

func (s StrategyConfig) validate() error {
	if s.Name == "" {
		return errors.New("strategy name is required")
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("strategy %s: tick_interval must be positive", s.Name)
	}
	if !s.Enabled {
		return nil
	}

	if s.BaseTicker == "" {
		return fmt.Errorf("strategy %s: base_ticker is required", s.Name)
	}
	if s.MaxNotionalCents <= 0 {
		return fmt.Errorf("strategy %s: max_notional_cents must be positive", s.Name)
	}
	if s.UncertaintyCents < 0 || s.PeakUncertaintyCents < 0 {
		return fmt.Errorf("strategy %s: uncertainty margins must not be negative", s.Name)
	}
	if s.VaRBudgetCents <= 0 {
		return fmt.Errorf("strategy %s: var_budget_cents must be positive", s.Name)
	}

	// Overnight windows are rejected rather than interpreted: the venue's
	// daily markets make a window spanning midnight meaningless here.
	w, err := s.Window()
	if err != nil {
		return err
	}
	if w != nil && (w.End.Hour < w.Start.Hour ||
		(w.End.Hour == w.Start.Hour && w.End.Minute < w.Start.Minute)) {
		return fmt.Errorf("strategy %s: window end %s before start %s", s.Name, w.End, w.Start)
	}
	return nil
}

func validateMarks(field string, marks []int) error {
	if len(marks) == 0 {
		return fmt.Errorf("%s must not be empty", field)
	}
	for _, m := range marks {
		if m < 0 || m > 59 {
			return fmt.Errorf("%s: mark %d out of range [0,59]", field, m)
		}
	}
	return nil
}
