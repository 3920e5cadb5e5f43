package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
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

func observationJSON(ts string, tempC float64, raw string) string {
	return fmt.Sprintf(`{
		"properties": {
			"timestamp": %q,
			"rawMessage": %q,
			"temperature": {"unitCode": "wmoUnit:degC", "value": %g}
		}
	}`, ts, raw, tempC)
}

func TestParseSixHourMax(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		found bool
	}{
		{"KNYC 301951Z AUTO 19008KT 10SM 27/17 RMK AO2 SLP135 T02720172 10289 20206 58008", 28.9, true},
		{"KNYC 301951Z RMK 11044 T01000090", -4.4, true},
		{"KNYC 301951Z AUTO 19008KT 10SM 27/17 RMK AO2", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseSixHourMax(tt.raw)
		if ok != tt.found {
			t.Errorf("parseSixHourMax(%q) found = %v, want %v", tt.raw, ok, tt.found)
			continue
		}
		if ok && math.Abs(got.Celsius()-tt.want) > 1e-9 {
			t.Errorf("parseSixHourMax(%q) = %vC, want %vC", tt.raw, got.Celsius(), tt.want)
		}
	}
}

func TestParseSixHourMax_RejectsImplausible(t *testing.T) {
	// A garbled remark claiming +80.0C must not become the reference value.
	if _, ok := parseSixHourMax("RMK 10800"); ok {
		t.Error("implausible 6hr max should be rejected")
	}
}

func TestNWSClient_ReferenceValue_RunningMax(t *testing.T) {
	// Three prints on one local day: 21.0C, then 24.0C (with a 24.4C 6hr max
	// group), then a cooler 22.0C. The running max must hold 24.4C.
	now := time.Date(2025, time.August, 14, 15, 0, 0, 0, nyc)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stations/KNYC/observations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		// Newest first, as the live feed returns.
		fmt.Fprintf(w, `{"features": [%s, %s, %s]}`,
			observationJSON("2025-08-14T18:51:00Z", 22.0, "RMK AO2"),
			observationJSON("2025-08-14T17:51:00Z", 24.0, "RMK AO2 10244"),
			observationJSON("2025-08-14T16:51:00Z", 21.0, "RMK AO2"),
		)
	}))
	defer srv.Close()

	c := NewNWSClient("KNYC", nyc, WithBaseURL(srv.URL))

	ref, err := c.ReferenceValue(context.Background(), now)
	if err != nil {
		t.Fatalf("ReferenceValue failed: %v", err)
	}
	if math.Abs(ref.Celsius()-24.4) > 1e-9 {
		t.Errorf("reference = %vC, want 24.4", ref.Celsius())
	}

	inst, err := c.Instantaneous(context.Background(), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Instantaneous failed: %v", err)
	}
	if math.Abs(inst.Celsius()-22.0) > 1e-9 {
		t.Errorf("instantaneous = %vC, want 22.0 (latest print)", inst.Celsius())
	}
}

func TestNWSClient_ReferenceValue_ResetsOnNewDay(t *testing.T) {
	day := 13
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"features": [%s]}`,
			observationJSON(fmt.Sprintf("2025-08-%02dT18:51:00Z", day), 30.0-float64(day-13)*10, "RMK AO2"),
		)
	}))
	defer srv.Close()

	c := NewNWSClient("KNYC", nyc, WithBaseURL(srv.URL))

	aug13 := time.Date(2025, time.August, 13, 15, 0, 0, 0, nyc)
	ref, err := c.ReferenceValue(context.Background(), aug13)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ref.Celsius()-30.0) > 1e-9 {
		t.Errorf("day 1 reference = %vC, want 30.0", ref.Celsius())
	}

	// The next day's cooler print must replace, not extend, the old max.
	day = 14
	aug14 := aug13.AddDate(0, 0, 1)
	ref, err = c.ReferenceValue(context.Background(), aug14)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ref.Celsius()-20.0) > 1e-9 {
		t.Errorf("day 2 reference = %vC, want 20.0 (reset)", ref.Celsius())
	}
}

func TestNWSClient_ReferenceValue_NoDataForDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	}))
	defer srv.Close()

	c := NewNWSClient("KNYC", nyc, WithBaseURL(srv.URL))
	now := time.Date(2025, time.August, 14, 15, 0, 0, 0, nyc)
	if _, err := c.ReferenceValue(context.Background(), now); err == nil {
		t.Error("expected error when no observations exist for the day")
	}
}

func TestNWSClient_Refresh_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewNWSClient("KNYC", nyc, WithBaseURL(srv.URL))
	if _, err := c.Refresh(context.Background()); err == nil {
		t.Error("expected error on upstream failure")
	}
}
