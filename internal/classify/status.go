// Package classify maps raw carrier vocabulary (status codes, route codes)
// onto the fixed operational taxonomy used by the reconciliation pipeline.
// Classifiers are built once from configuration tables; unrecognized values
// always degrade to the catch-all category rather than failing.
package classify

import (
	"github.com/rotisserie/eris"

	"github.com/ecomlogix/dispatch-cli/internal/config"
	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// StatusClassifier maps a raw status code to its operational category by
// exact, case-sensitive match.
type StatusClassifier struct {
	byCode map[string]model.StatusCategory
}

// NewStatusClassifier builds a classifier from the configured code sets.
// Category names must belong to the known taxonomy, and a code may appear in
// only one set; either violation is a configuration error, not a data error.
func NewStatusClassifier(sets []config.StatusSet) (*StatusClassifier, error) {
	known := make(map[model.StatusCategory]bool, len(model.AllCategories()))
	for _, c := range model.AllCategories() {
		known[c] = true
	}

	byCode := make(map[string]model.StatusCategory)
	for _, set := range sets {
		category := model.StatusCategory(set.Category)
		if !known[category] {
			return nil, eris.Errorf("classify: unknown status category %q", set.Category)
		}
		for _, code := range set.Codes {
			if existing, ok := byCode[code]; ok && existing != category {
				return nil, eris.Errorf("classify: status code %q mapped to both %q and %q", code, existing, category)
			}
			byCode[code] = category
		}
	}

	return &StatusClassifier{byCode: byCode}, nil
}

// Classify returns the category for a raw status code. Codes outside every
// known set classify as Other.
func (c *StatusClassifier) Classify(statusCode string) model.StatusCategory {
	if category, ok := c.byCode[statusCode]; ok {
		return category
	}
	return model.CategoryOther
}

// Known reports whether the code belongs to any configured set. Used by the
// data-quality summary to surface unclassified codes without raising.
func (c *StatusClassifier) Known(statusCode string) bool {
	_, ok := c.byCode[statusCode]
	return ok
}
