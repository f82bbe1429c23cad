package pipeline

import (
	"sort"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// itemDay joins dispatch and delivery scans for one item on one date.
type itemDay struct {
	item string
	date string
}

// driverDay is the key mismatch data attaches back to runs with.
type driverDay struct {
	date   string
	driver string
}

// routePair is one dispatched-under / delivered-under route pairing.
type routePair struct {
	dispatchRoute string
	deliveryRoute string
}

// mismatchGroup aggregates the distinct items a driver dispatched under one
// route and delivered under another on the same date.
type mismatchGroup struct {
	routePair
	count int
}

// mismatchIndex holds mismatch groups per (date, driver). Building it
// requires the whole batch: the dispatch/delivery join for a date cannot be
// finalized until every event for that date has been seen.
type mismatchIndex struct {
	byDriverDay map[driverDay][]mismatchGroup
}

// buildMismatchIndex cross-references OFD Scans events against Delivered
// events per (item, date). A mismatch is an item dispatched under one route
// and delivered under a different route by the same driver; different-driver
// reassignments are a separate accounting case and are not counted.
func buildMismatchIndex(events []model.ScanEvent) *mismatchIndex {
	type tuple struct {
		route  string
		driver string
	}
	dispatches := make(map[itemDay][]tuple)
	deliveries := make(map[itemDay][]tuple)

	for i := range events {
		e := &events[i]
		id := itemDay{item: e.ItemID, date: e.ScanDate}
		switch e.Category {
		case model.CategoryOFD:
			dispatches[id] = append(dispatches[id], tuple{route: e.RouteCode, driver: e.DriverName})
		case model.CategoryDelivered:
			deliveries[id] = append(deliveries[id], tuple{route: e.RouteCode, driver: e.DriverName})
		}
	}

	type groupKey struct {
		driverDay
		routePair
	}
	items := make(map[groupKey]map[string]bool)

	for id, disp := range dispatches {
		del, ok := deliveries[id]
		if !ok {
			continue
		}
		for _, d := range disp {
			for _, v := range del {
				if d.route == v.route || d.driver != v.driver {
					continue
				}
				key := groupKey{
					driverDay: driverDay{date: id.date, driver: d.driver},
					routePair: routePair{dispatchRoute: d.route, deliveryRoute: v.route},
				}
				if items[key] == nil {
					items[key] = make(map[string]bool)
				}
				items[key][id.item] = true
			}
		}
	}

	idx := &mismatchIndex{byDriverDay: make(map[driverDay][]mismatchGroup)}
	for key, distinct := range items {
		idx.byDriverDay[key.driverDay] = append(idx.byDriverDay[key.driverDay], mismatchGroup{
			routePair: key.routePair,
			count:     len(distinct),
		})
	}
	for dd := range idx.byDriverDay {
		groups := idx.byDriverDay[dd]
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].dispatchRoute != groups[j].dispatchRoute {
				return groups[i].dispatchRoute < groups[j].dispatchRoute
			}
			return groups[i].deliveryRoute < groups[j].deliveryRoute
		})
	}

	return idx
}

// attach looks up the mismatch data for a run. The lookup joins on
// (date, driver) only, not the run's own route, mirroring the upstream
// billing sheet: a driver with two routes on the same day receives the
// pair's full mismatch count on every run.
// TODO: confirm with the billing owner whether attachment should be scoped
// to the dispatch route when a driver has multiple runs in a day.
func (m *mismatchIndex) attach(date, driver string) (count int, route string) {
	groups := m.byDriverDay[driverDay{date: date, driver: driver}]
	if len(groups) == 0 {
		return 0, ""
	}
	for _, g := range groups {
		count += g.count
	}
	return count, groups[0].deliveryRoute
}
