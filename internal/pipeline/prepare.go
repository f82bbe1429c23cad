package pipeline

import (
	"go.uber.org/zap"

	"github.com/ecomlogix/dispatch-cli/internal/model"
	"github.com/ecomlogix/dispatch-cli/internal/normalize"
)

// prepare returns a normalized, classified copy of the batch. The caller's
// slice is left untouched; every downstream stage works on the copy.
func (p *Pipeline) prepare(events []model.ScanEvent) []model.ScanEvent {
	prepared := make([]model.ScanEvent, len(events))
	copy(prepared, events)

	for i := range prepared {
		e := &prepared[i]

		e.ShipToName = normalize.Clean(e.ShipToName)
		e.ShipToAddress = normalize.Clean(e.ShipToAddress)
		e.ShipToAddress2 = normalize.Clean(e.ShipToAddress2)
		e.ShipToCity = normalize.Clean(e.ShipToCity)
		e.ShipToProvince = normalize.Clean(e.ShipToProvince)
		e.ShipToPostalCode = normalize.Clean(e.ShipToPostalCode)
		e.ShipToCountry = normalize.Clean(e.ShipToCountry)
		e.DeliveryCity = normalize.Clean(e.DeliveryCity)

		e.FullAddress = normalize.FullAddress(
			e.ShipToName,
			e.ShipToAddress,
			e.ShipToAddress2,
			e.ShipToCity,
			e.ShipToProvince,
			e.ShipToPostalCode,
			e.ShipToCountry,
		)
		e.Category = p.status.Classify(e.StatusCode)
	}

	return prepared
}

// QualityReport lists the raw values in a batch that classified into the
// catch-all category or tier, with occurrence counts. These are not errors:
// the batch still processes, but an unknown status code silently drops the
// event from every count, so operators want to see them.
type QualityReport struct {
	UnknownStatusCodes map[string]int `json:"unknown_status_codes"`
	UnknownRouteCodes  map[string]int `json:"unknown_route_codes"`
}

// Clean reports whether every value in the batch classified.
func (q QualityReport) Clean() bool {
	return len(q.UnknownStatusCodes) == 0 && len(q.UnknownRouteCodes) == 0
}

func (q QualityReport) log() {
	if q.Clean() {
		return
	}
	zap.L().Warn("pipeline: batch has unclassified values",
		zap.Int("unknown_status_codes", len(q.UnknownStatusCodes)),
		zap.Int("unknown_route_codes", len(q.UnknownRouteCodes)),
	)
}

// auditQuality scans a prepared batch for status codes classifying as Other
// and route codes tiering as Other.
func (p *Pipeline) auditQuality(prepared []model.ScanEvent) QualityReport {
	q := QualityReport{
		UnknownStatusCodes: make(map[string]int),
		UnknownRouteCodes:  make(map[string]int),
	}
	for i := range prepared {
		e := &prepared[i]
		if e.Category == model.CategoryOther && e.StatusCode != "" {
			q.UnknownStatusCodes[e.StatusCode]++
		}
		if e.RouteCode != "" && p.service.Classify(e.RouteCode) == model.TierOther {
			q.UnknownRouteCodes[e.RouteCode]++
		}
	}
	return q
}
