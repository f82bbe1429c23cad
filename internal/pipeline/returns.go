package pipeline

import (
	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// confirmedReturns counts the distinct items scanned Return within one run
// whose item was never also scanned Delivered in the same run: a later
// successful delivery cancels an earlier return-exception scan. The count is
// strictly per run key — the same item id can appear with other statuses
// under unrelated keys.
func confirmedReturns(events []*model.ScanEvent) int {
	delivered := make(map[string]bool)
	for _, e := range events {
		if e.Category == model.CategoryDelivered {
			delivered[e.ItemID] = true
		}
	}

	returned := make(map[string]bool)
	for _, e := range events {
		if e.Category == model.CategoryReturn && !delivered[e.ItemID] {
			returned[e.ItemID] = true
		}
	}

	return len(returned)
}
