package pipeline

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/ecomlogix/dispatch-cli/internal/config"
	"github.com/ecomlogix/dispatch-cli/internal/model"
	"github.com/ecomlogix/dispatch-cli/internal/normalize"
)

// RateEngine computes per-run billing rates from the configured rate card.
// All arithmetic is decimal: payable amounts must not drift at two decimal
// places.
type RateEngine struct {
	tiers     map[model.ServiceTier]decimal.Decimal
	overrides map[model.ServiceTier]map[string]decimal.Decimal
}

// NewRateEngine parses the configured rate card. Override cities are
// normalized at construction so lookups compare like with like.
func NewRateEngine(cfg config.RatesConfig) (*RateEngine, error) {
	tiers := make(map[model.ServiceTier]decimal.Decimal, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		rate, err := decimal.NewFromString(t.Rate)
		if err != nil {
			return nil, eris.Wrapf(err, "rates: tier %q rate %q", t.Tier, t.Rate)
		}
		tiers[model.ServiceTier(t.Tier)] = rate
	}

	overrides := make(map[model.ServiceTier]map[string]decimal.Decimal)
	for _, o := range cfg.CityOverrides {
		rate, err := decimal.NewFromString(o.Rate)
		if err != nil {
			return nil, eris.Wrapf(err, "rates: tier %q city %q rate %q", o.Tier, o.City, o.Rate)
		}
		tier := model.ServiceTier(o.Tier)
		if overrides[tier] == nil {
			overrides[tier] = make(map[string]decimal.Decimal)
		}
		overrides[tier][normalize.Clean(o.City)] = rate
	}

	return &RateEngine{tiers: tiers, overrides: overrides}, nil
}

// Rate returns the per-delivery rate for a service tier and normalized
// delivery city. Tiers outside the rate card get zero: a valid sentinel
// meaning not billable under current tiering, not an error.
func (r *RateEngine) Rate(tier model.ServiceTier, deliveryCity string) decimal.Decimal {
	if byCity, ok := r.overrides[tier]; ok {
		if rate, ok := byCity[deliveryCity]; ok {
			return rate
		}
	}
	if rate, ok := r.tiers[tier]; ok {
		return rate
	}
	return decimal.Zero
}

// Payable computes (delivered + mismatch) × rate.
func (r *RateEngine) Payable(deliveredCount, mismatchCount int, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(deliveredCount + mismatchCount)).Mul(rate)
}
