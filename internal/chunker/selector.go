package chunker

import (
	"fmt"
	"strings"

	"boe-rag/internal/config"
	"boe-rag/internal/models"
)

// Rule maps a classification to a strategy. Empty fields match anything and
// non-empty fields compare case-insensitively.
type Rule struct {
	Section    string
	Department string
	Epigrafe   string
	Strategy   string
}

func (r Rule) matches(rec models.FlatRecord) bool {
	return field(r.Section, rec.SeccionCodigo) &&
		field(r.Department, rec.DepartamentoNombre) &&
		field(r.Epigrafe, rec.EpigrafeNombre)
}

func field(want, got string) bool {
	return want == "" || strings.EqualFold(want, strings.TrimSpace(got))
}

// DefaultRules are the section policies used when none are configured.
var DefaultRules = []Rule{
	{Section: "2A", Epigrafe: "Nombramientos", Strategy: models.StrategyWholeDocument},
	{Section: "2B", Strategy: models.StrategyIntroPlusEachList},
	{Section: "3", Department: "Universidades", Strategy: models.StrategyIntroPlusEachTable},
	{Section: "5A", Strategy: models.StrategyDefinitionLists},
	{Section: "5B", Strategy: models.StrategyBlocksAndTables},
	{Section: "5C", Strategy: models.StrategyWholeDocument},
}

// Selector picks a strategy per record from an ordered rule table; first match wins.
type Selector struct {
	rules []Rule
}

// NewSelector validates rules against the strategy registry. Without rules it
// uses DefaultRules.
func NewSelector(rules []Rule) (*Selector, error) {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	for i, r := range rules {
		if _, ok := strategies[r.Strategy]; !ok {
			return nil, fmt.Errorf("rule %d: unknown strategy %q", i, r.Strategy)
		}
	}
	return &Selector{rules: rules}, nil
}

// RulesFromConfig converts configured rules; an empty table yields nil.
func RulesFromConfig(cfg []config.RuleConfig) []Rule {
	if len(cfg) == 0 {
		return nil
	}
	rules := make([]Rule, len(cfg))
	for i, r := range cfg {
		rules[i] = Rule{Section: r.Section, Department: r.Department, Epigrafe: r.Epigrafe, Strategy: r.Strategy}
	}
	return rules
}

// Select returns the strategy name for rec, generic when no rule matches.
func (s *Selector) Select(rec models.FlatRecord) string {
	for _, r := range s.rules {
		if r.matches(rec) {
			return r.Strategy
		}
	}
	return models.StrategyGeneric
}
