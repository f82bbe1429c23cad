package model

import (
	"github.com/shopspring/decimal"
)

// RouteRun is the per-day, per-driver, per-route operational and billing
// summary produced by the reconciliation pipeline. A RouteRun exists only
// when at least one dispatched (OFD Scans) event exists for its key, and is
// immutable after the rate stage.
type RouteRun struct {
	Date       string `json:"date"`
	DriverName string `json:"driver_name"`
	RouteCode  string `json:"route_code"`

	PackageCount int         `json:"package_count"`
	StopCount    int         `json:"stop_count"`
	DeliveryCity string      `json:"delivery_city"`
	ServiceTier  ServiceTier `json:"service_tier"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`

	DeliveredCount       int    `json:"delivered_count"`
	MismatchCount        int    `json:"mismatch_count"`
	MismatchRoute        string `json:"mismatch_route,omitempty"` // empty when MismatchCount == 0
	ConfirmedReturnCount int    `json:"confirmed_return_count"`

	Rate          decimal.Decimal `json:"rate"`
	PayableAmount decimal.Decimal `json:"payable_amount"`
}

// Key returns the grouping key of the run.
func (r RouteRun) Key() RunKey {
	return RunKey{Date: r.Date, Driver: r.DriverName, Route: r.RouteCode}
}

// Partitions is the final pipeline output: completed RouteRuns split by
// service tier. Other-tier runs are computed but not emitted.
type Partitions struct {
	NextDay  []RouteRun `json:"next_day"`
	SameDay  []RouteRun `json:"same_day"`
	Montreal []RouteRun `json:"montreal"`
}

// Total returns the number of runs across all emitted partitions.
func (p *Partitions) Total() int {
	return len(p.NextDay) + len(p.SameDay) + len(p.Montreal)
}
