// Package board turns raw predictions into the sign's display model: sorted
// per-side route lists, a layout density, and formatted entries.
package board

import (
	"math"
	"slices"

	"github.com/deevus/transit-sign/feed"
)

// Density is a pair of padding values selecting how much breathing room
// each entry gets.
type Density struct {
	PaddingX int `json:"padding_x"`
	PaddingY int `json:"padding_y"`
}

var (
	// Spacious is used while the busier side lists at most SpaciousMaxRoutes routes.
	Spacious = Density{PaddingX: 16, PaddingY: 12}
	// Compact packs entries tightly for crowded boards.
	Compact = Density{PaddingX: 4, PaddingY: 3}
)

// SpaciousMaxRoutes is the largest per-side route count that still renders spacious.
const SpaciousMaxRoutes = 6

// DensityFor picks the density for a board whose busier side has count routes.
func DensityFor(count int) Density {
	if count <= SpaciousMaxRoutes {
		return Spacious
	}
	return Compact
}

// Stops identifies the two sides of the sign.
type Stops struct {
	A string
	B string
}

// Board is the result of one transform: both sides sorted plus the density.
type Board struct {
	EntriesA []feed.RouteSnapshot
	EntriesB []feed.RouteSnapshot
	Density  Density
}

// Transform selects the tracked stops from preds, sorts each side by its
// soonest arrival and derives the density. A stop missing from preds is an
// empty side. preds is never modified.
func Transform(preds feed.StopPredictions, stops Stops) Board {
	a := SortByFirstArrival(preds[stops.A])
	b := SortByFirstArrival(preds[stops.B])
	return Board{
		EntriesA: a,
		EntriesB: b,
		Density:  DensityFor(max(len(a), len(b))),
	}
}

// SortByFirstArrival returns a sorted copy of routes ordered by their first
// arrival. Routes without arrivals go last; ties keep their input order.
func SortByFirstArrival(routes []feed.RouteSnapshot) []feed.RouteSnapshot {
	out := make([]feed.RouteSnapshot, len(routes))
	copy(out, routes)
	slices.SortStableFunc(out, func(x, y feed.RouteSnapshot) int {
		fx, fy := firstSeconds(x), firstSeconds(y)
		switch {
		case fx < fy:
			return -1
		case fx > fy:
			return 1
		}
		return 0
	})
	return out
}

func firstSeconds(r feed.RouteSnapshot) float64 {
	if len(r.Arrivals) == 0 {
		return math.Inf(1)
	}
	return r.Arrivals[0].Seconds
}
