// Package model defines the entities returned by the aggregator.
package model

// Fallback values substituted when an upstream call fails.
const (
	UnknownLaunchName = "Unknown"
	DefaultCatFact    = "No cat fact available"
)

// Source names used in logs and metrics.
const (
	SourceISS     = "iss"
	SourceSpaceX  = "spacex"
	SourceCatFact = "cat_fact"
	SourceEURUSD  = "eur_usd"
)

// Sources lists every upstream in response order.
var Sources = []string{SourceISS, SourceSpaceX, SourceCatFact, SourceEURUSD}

// ISSPosition is the current position of the space station.
type ISSPosition struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timestamp int64   `json:"timestamp"` // Unix seconds
}

// Launch is the latest rocket launch.
// Success is nil when the launch outcome is not yet known.
type Launch struct {
	Name    string `json:"name"`
	DateUTC string `json:"date_utc"`
	Success *bool  `json:"success"`
}

// AggregateResult is the combined response of the aggregate endpoint.
// Every field is always present; failed upstreams carry their default.
type AggregateResult struct {
	ISS     ISSPosition `json:"iss"`
	SpaceX  Launch      `json:"spacex"`
	CatFact string      `json:"cat_fact"`
	EURUSD  float64     `json:"eur_usd"`
}

// DefaultISSPosition returns the position reported when the ISS lookup fails.
func DefaultISSPosition() ISSPosition {
	return ISSPosition{}
}

// DefaultLaunch returns the launch reported when the launch lookup fails.
func DefaultLaunch() Launch {
	failed := false
	return Launch{
		Name:    UnknownLaunchName,
		DateUTC: "",
		Success: &failed,
	}
}

// DefaultAggregateResult returns a result with every field defaulted.
func DefaultAggregateResult() AggregateResult {
	return AggregateResult{
		ISS:     DefaultISSPosition(),
		SpaceX:  DefaultLaunch(),
		CatFact: DefaultCatFact,
		EURUSD:  0,
	}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
