package pipeline

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// groupIndex maps each (date, driver, route) key to its member events,
// computed once over the prepared batch and reused by every enrichment
// stage. Events within a group keep original row order, which makes
// first-row fields (delivery city) deterministic.
type groupIndex struct {
	groups map[model.RunKey][]*model.ScanEvent
}

// buildGroupIndex indexes the prepared batch by run key. All events are
// indexed, not only dispatched ones: stop counts and time windows span the
// whole group.
func buildGroupIndex(events []model.ScanEvent) *groupIndex {
	idx := &groupIndex{groups: make(map[model.RunKey][]*model.ScanEvent)}
	for i := range events {
		e := &events[i]
		key := model.RunKey{Date: e.ScanDate, Driver: e.DriverName, Route: e.RouteCode}
		idx.groups[key] = append(idx.groups[key], e)
	}
	return idx
}

// dispatchKeys returns the keys holding at least one OFD Scans event, sorted
// by (date, driver, route). A route-run exists only for these keys; groups
// with only delivered or return events never become runs.
func (g *groupIndex) dispatchKeys() []model.RunKey {
	var keys []model.RunKey
	for key, events := range g.groups {
		for _, e := range events {
			if e.Category == model.CategoryOFD {
				keys = append(keys, key)
				break
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		if keys[i].Driver != keys[j].Driver {
			return keys[i].Driver < keys[j].Driver
		}
		return keys[i].Route < keys[j].Route
	})
	return keys
}

// aggregateRun builds the base RouteRun for one dispatch key: package and
// stop counts, delivery city, service tier, and the scan time window.
func (p *Pipeline) aggregateRun(key model.RunKey, events []*model.ScanEvent) (model.RouteRun, error) {
	if len(events) == 0 {
		// Cannot occur: dispatchKeys only yields keys with member events.
		return model.RouteRun{}, eris.Errorf("pipeline: empty group for key %s/%s/%s", key.Date, key.Driver, key.Route)
	}

	packages := make(map[string]bool)
	delivered := make(map[string]bool)
	stops := make(map[string]bool)
	startTime := events[0].ScanTime
	endTime := events[0].ScanTime

	for _, e := range events {
		switch e.Category {
		case model.CategoryOFD:
			packages[e.ItemID] = true
		case model.CategoryDelivered:
			delivered[e.ItemID] = true
		}
		stops[e.FullAddress] = true

		// Times are HH:MM:SS, so lexical comparison is chronological.
		if e.ScanTime < startTime {
			startTime = e.ScanTime
		}
		if e.ScanTime > endTime {
			endTime = e.ScanTime
		}
	}

	return model.RouteRun{
		Date:           key.Date,
		DriverName:     key.Driver,
		RouteCode:      key.Route,
		PackageCount:   len(packages),
		StopCount:      len(stops),
		DeliveryCity:   events[0].DeliveryCity,
		ServiceTier:    p.service.Classify(key.Route),
		StartTime:      startTime,
		EndTime:        endTime,
		DeliveredCount: len(delivered),
	}, nil
}
