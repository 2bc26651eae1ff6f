// Package feed consumes the prediction service that backs the sign.
//
// The service answers GET {base}/predictions with a JSON object keyed by stop
// identifier, each holding the routes currently predicted at that stop.
package feed

// CapacityCode is the passenger-load indicator attached to an arrival.
// Values outside the known set are valid data with no display mapping.
type CapacityCode string

const (
	CapacityEmpty     CapacityCode = "EMPTY"
	CapacityHalfEmpty CapacityCode = "HALF_EMPTY"
	CapacityFull      CapacityCode = "FULL"
)

// Arrival is one predicted bus arrival at a stop.
type Arrival struct {
	BusID    string       `json:"bus_id"`
	Capacity CapacityCode `json:"capacity"`
	Seconds  float64      `json:"seconds"`
}

// RouteSnapshot groups the arrivals of one route and destination at a stop.
type RouteSnapshot struct {
	Route       string    `json:"route"`
	Destination string    `json:"destination"`
	Arrivals    []Arrival `json:"arrivals"`
}

// StopPredictions maps a stop identifier to its routes, in no meaningful order.
type StopPredictions map[string][]RouteSnapshot
