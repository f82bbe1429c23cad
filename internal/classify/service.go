package classify

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ecomlogix/dispatch-cli/internal/config"
	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// serviceRule is a compiled prefix rule.
type serviceRule struct {
	prefix string
	tier   model.ServiceTier
}

// ServiceClassifier maps a route code to a service tier by prefix matching.
// Rules are evaluated in configuration order, first match wins: order matters
// because one prefix can be a superset of another (YYZ- contains YYZ-SD).
type ServiceClassifier struct {
	rules []serviceRule
}

// knownTiers are the tiers a rule may target. Other is not a valid target:
// it is the fallthrough, never a rule.
var knownTiers = map[model.ServiceTier]bool{
	model.TierSameDay:  true,
	model.TierNextDay:  true,
	model.TierMontreal: true,
}

// NewServiceClassifier compiles ordered prefix rules from configuration.
func NewServiceClassifier(rules []config.ServiceRule) (*ServiceClassifier, error) {
	if len(rules) == 0 {
		return nil, eris.New("classify: no service rules configured")
	}

	compiled := make([]serviceRule, 0, len(rules))
	for _, r := range rules {
		if r.Prefix == "" {
			return nil, eris.New("classify: service rule with empty prefix")
		}
		tier := model.ServiceTier(r.Tier)
		if !knownTiers[tier] {
			return nil, eris.Errorf("classify: service rule %q targets unknown tier %q", r.Prefix, r.Tier)
		}
		compiled = append(compiled, serviceRule{prefix: r.Prefix, tier: tier})
	}

	return &ServiceClassifier{rules: compiled}, nil
}

// Classify returns the service tier for a route code. Empty route codes and
// codes matching no rule classify as Other.
func (c *ServiceClassifier) Classify(routeCode string) model.ServiceTier {
	if routeCode == "" {
		return model.TierOther
	}
	for _, r := range c.rules {
		if strings.HasPrefix(routeCode, r.prefix) {
			return r.tier
		}
	}
	return model.TierOther
}

// Known reports whether the route code matches any configured rule.
func (c *ServiceClassifier) Known(routeCode string) bool {
	return c.Classify(routeCode) != model.TierOther
}
