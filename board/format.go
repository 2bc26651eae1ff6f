package board

import (
	"math"
	"strconv"
	"strings"

	"git.sr.ht/~rockorager/vaxis"
	"github.com/deevus/transit-sign/feed"
)

const (
	// ApproachingThreshold is the arrival time, in seconds, under which the
	// primary countdown reads "Approaching".
	ApproachingThreshold = 30

	approachingLabel = "Approaching"
	noDataLabel      = "N/A"
)

// Countdown is the formatted time until an arrival.
type Countdown struct {
	Text        string `json:"text"`
	Minutes     int    `json:"minutes"`
	Approaching bool   `json:"approaching"`
}

// FormatCountdown renders seconds until arrival.
func FormatCountdown(seconds float64) Countdown {
	if seconds < ApproachingThreshold {
		return Countdown{Text: approachingLabel, Approaching: true}
	}
	m := minutes(seconds)
	return Countdown{Text: strconv.Itoa(m) + " min", Minutes: m}
}

func minutes(seconds float64) int {
	return int(math.Ceil(seconds / 60))
}

// Primary formats the soonest arrival of r, or "N/A" without arrivals.
func Primary(r feed.RouteSnapshot) Countdown {
	if len(r.Arrivals) == 0 {
		return Countdown{Text: noDataLabel}
	}
	return FormatCountdown(r.Arrivals[0].Seconds)
}

// Secondary returns the minute counts of the second and third arrivals.
// These never read "Approaching".
func Secondary(r feed.RouteSnapshot) []int {
	if len(r.Arrivals) < 2 {
		return nil
	}
	next := r.Arrivals[1:min(len(r.Arrivals), 3)]
	out := make([]int, 0, len(next))
	for _, a := range next {
		out = append(out, minutes(a.Seconds))
	}
	return out
}

// SecondaryText renders Secondary as "Next: 4, 11 min", or "" when empty.
func SecondaryText(r feed.RouteSnapshot) string {
	mins := Secondary(r)
	if len(mins) == 0 {
		return ""
	}
	parts := make([]string, len(mins))
	for i, m := range mins {
		parts[i] = strconv.Itoa(m)
	}
	return "Next: " + strings.Join(parts, ", ") + " min"
}

// CapacityStyle is the label and colour shown for a capacity code.
type CapacityStyle struct {
	Label string
	Color vaxis.Color
}

var capacityStyles = map[feed.CapacityCode]CapacityStyle{
	feed.CapacityEmpty:     {Label: "Empty", Color: vaxis.RGBColor(0x4a, 0xde, 0x80)},
	feed.CapacityHalfEmpty: {Label: "Some seats", Color: vaxis.RGBColor(0xfa, 0xcc, 0x15)},
	feed.CapacityFull:      {Label: "Full", Color: vaxis.RGBColor(0xf8, 0x71, 0x71)},
}

// Capacity looks up the capacity of the soonest arrival. It reports false
// when there is no arrival or the code has no mapping.
func Capacity(r feed.RouteSnapshot) (CapacityStyle, bool) {
	if len(r.Arrivals) == 0 {
		return CapacityStyle{}, false
	}
	s, ok := capacityStyles[r.Arrivals[0].Capacity]
	return s, ok
}

// NeutralRouteColor is the badge colour of routes without an entry in the table.
var NeutralRouteColor = vaxis.RGBColor(0x6b, 0x72, 0x80)

// Badge colours for the routes serving the sign's stops.
var routeColors = map[string]vaxis.Color{
	"28X": vaxis.RGBColor(0x0e, 0xa5, 0xe9),
	"58":  vaxis.RGBColor(0x84, 0xcc, 0x16),
	"61A": vaxis.RGBColor(0xdc, 0x26, 0x26),
	"61B": vaxis.RGBColor(0xea, 0x58, 0x0c),
	"61C": vaxis.RGBColor(0xd9, 0x77, 0x06),
	"61D": vaxis.RGBColor(0xc0, 0x26, 0xd3),
	"67":  vaxis.RGBColor(0x25, 0x63, 0xeb),
	"69":  vaxis.RGBColor(0x05, 0x96, 0x69),
	"71A": vaxis.RGBColor(0x7c, 0x3a, 0xed),
	"71B": vaxis.RGBColor(0xdb, 0x27, 0x77),
	"71C": vaxis.RGBColor(0x0d, 0x94, 0x88),
	"71D": vaxis.RGBColor(0x4f, 0x46, 0xe5),
	"P3":  vaxis.RGBColor(0x65, 0xa3, 0x0d),
}

// RouteColor returns the badge colour for route.
func RouteColor(route string) vaxis.Color {
	if c, ok := routeColors[route]; ok {
		return c
	}
	return NeutralRouteColor
}
