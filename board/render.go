package board

import (
	"git.sr.ht/~rockorager/vaxis"
	"github.com/deevus/transit-sign/feed"
)

// PlaceholderRoute is the label of the single entry shown for a side with no routes.
const PlaceholderRoute = "No Buses Running"

// EntryKey identifies an entry across refreshes.
type EntryKey struct {
	Route       string
	Destination string
}

// Entry is one display-ready row of a column.
type Entry struct {
	Key         EntryKey
	Route       string
	Destination string
	Countdown   Countdown
	Secondary   string
	Capacity    CapacityStyle
	HasCapacity bool
	Badge       vaxis.Color
	Padding     Density
	Placeholder bool
}

// Column maps a sorted side to display entries. An empty side yields one
// placeholder entry that always uses Spacious padding.
func Column(routes []feed.RouteSnapshot, density Density) []Entry {
	if len(routes) == 0 {
		return []Entry{placeholder()}
	}
	entries := make([]Entry, 0, len(routes))
	for _, r := range routes {
		capStyle, hasCap := Capacity(r)
		entries = append(entries, Entry{
			Key:         EntryKey{Route: r.Route, Destination: r.Destination},
			Route:       r.Route,
			Destination: r.Destination,
			Countdown:   Primary(r),
			Secondary:   SecondaryText(r),
			Capacity:    capStyle,
			HasCapacity: hasCap,
			Badge:       RouteColor(r.Route),
			Padding:     density,
		})
	}
	return entries
}

func placeholder() Entry {
	return Entry{
		Key:         EntryKey{Route: PlaceholderRoute},
		Route:       PlaceholderRoute,
		Countdown:   Primary(feed.RouteSnapshot{}),
		Badge:       NeutralRouteColor,
		Padding:     Spacious,
		Placeholder: true,
	}
}

// Columns renders both sides of a committed view.
func Columns(v ViewState) (a, b []Entry) {
	return Column(v.EntriesA, v.Density), Column(v.EntriesB, v.Density)
}
