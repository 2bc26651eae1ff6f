package board_test

import (
	"testing"

	"github.com/deevus/transit-sign/board"
	"github.com/deevus/transit-sign/feed"
)

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds     float64
		text        string
		minutes     int
		approaching bool
	}{
		{0, "Approaching", 0, true},
		{-12, "Approaching", 0, true},
		{29, "Approaching", 0, true},
		{29.9, "Approaching", 0, true},
		{30, "1 min", 1, false},
		{60, "1 min", 1, false},
		{61, "2 min", 2, false},
		{90, "2 min", 2, false},
		{600, "10 min", 10, false},
	}
	for _, tt := range tests {
		got := board.FormatCountdown(tt.seconds)
		if got.Text != tt.text || got.Minutes != tt.minutes || got.Approaching != tt.approaching {
			t.Errorf("FormatCountdown(%v) = %+v, want {%s %d %v}", tt.seconds, got, tt.text, tt.minutes, tt.approaching)
		}
	}
}

func TestPrimary_NoArrivals(t *testing.T) {
	got := board.Primary(feed.RouteSnapshot{Route: "61A"})
	if got.Text != "N/A" {
		t.Errorf("expected N/A, got %q", got.Text)
	}
	if got.Approaching {
		t.Error("expected Approaching=false without arrivals")
	}
}

func TestSecondary(t *testing.T) {
	tests := []struct {
		name    string
		seconds []float64
		want    []int
		text    string
	}{
		{"none", nil, nil, ""},
		{"only primary", []float64{100}, nil, ""},
		{"one more", []float64{100, 200}, []int{4}, "Next: 4 min"},
		{"two more", []float64{100, 200, 610}, []int{4, 11}, "Next: 4, 11 min"},
		{"ignores fourth", []float64{100, 200, 300, 400}, []int{4, 5}, "Next: 4, 5 min"},
		{"no approaching in secondary", []float64{5, 10, 29}, []int{1, 1}, "Next: 1, 1 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := route("61A", "Downtown", tt.seconds...)
			got := board.Secondary(r)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: expected %d, got %d", i, tt.want[i], got[i])
				}
			}
			if text := board.SecondaryText(r); text != tt.text {
				t.Errorf("expected text %q, got %q", tt.text, text)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		code  feed.CapacityCode
		label string
		ok    bool
	}{
		{feed.CapacityEmpty, "Empty", true},
		{feed.CapacityHalfEmpty, "Some seats", true},
		{feed.CapacityFull, "Full", true},
		{"UNKNOWN_CODE", "", false},
		{"", "", false},
		{"N/A", "", false},
	}
	for _, tt := range tests {
		r := feed.RouteSnapshot{Arrivals: []feed.Arrival{{Capacity: tt.code, Seconds: 100}}}
		got, ok := board.Capacity(r)
		if ok != tt.ok || got.Label != tt.label {
			t.Errorf("Capacity(%q) = (%q, %v), want (%q, %v)", tt.code, got.Label, ok, tt.label, tt.ok)
		}
	}
}

func TestCapacity_DistinctColors(t *testing.T) {
	seen := map[string]bool{}
	for _, code := range []feed.CapacityCode{feed.CapacityEmpty, feed.CapacityHalfEmpty, feed.CapacityFull} {
		s, _ := board.Capacity(feed.RouteSnapshot{Arrivals: []feed.Arrival{{Capacity: code}}})
		key := s.Label
		if seen[key] {
			t.Errorf("duplicate capacity label %q", key)
		}
		seen[key] = true
		if s.Color == board.NeutralRouteColor {
			t.Errorf("capacity %s should have its own colour", code)
		}
	}
}

func TestCapacity_NoArrivals(t *testing.T) {
	if _, ok := board.Capacity(feed.RouteSnapshot{}); ok {
		t.Error("expected no capacity without arrivals")
	}
}

func TestRouteColor(t *testing.T) {
	if board.RouteColor("61A") == board.NeutralRouteColor {
		t.Error("expected 61A to have a mapped colour")
	}
	if board.RouteColor("61A") == board.RouteColor("71B") {
		t.Error("expected distinct colours for 61A and 71B")
	}
	if got := board.RouteColor("999Z"); got != board.NeutralRouteColor {
		t.Errorf("expected neutral fallback for unmapped route, got %v", got)
	}
}
