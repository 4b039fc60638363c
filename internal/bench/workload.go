package bench

import (
	"math/rand"

	"github.com/calluna/rulebench/internal/rule"
)

// testRule pairs a condition with its alert action.
type testRule struct {
	condition string
	action    string
}

// cannedRules is the fixed alerting rule set the add-rule phase cycles
// through. The conditions span realistic sensor thresholds so that a
// fraction of synthetic readings trigger each rule.
var cannedRules = []testRule{
	{"temperature > 25", "High temperature alert"},
	{"humidity < 30", "Low humidity warning"},
	{"pressure > 1013", "High pressure detected"},
	{"temperature < 0", "Freezing temperature alert"},
	{"humidity > 80", "High humidity warning"},
	{"pressure < 950", "Low pressure alert"},
	{"temperature > 40", "Critical temperature"},
	{"humidity > 90", "Excessive humidity"},
	{"pressure > 1050", "Extreme pressure"},
	{"temperature < -10", "Extreme cold"},
}

// workloadRules returns n rules, cycling through the canned set.
func workloadRules(n int) []testRule {
	rules := make([]testRule, n)
	for i := range rules {
		rules[i] = cannedRules[i%len(cannedRules)]
	}
	return rules
}

// readingGenerator produces synthetic sensor readings from a seeded source,
// so a given seed always yields the same message sequence.
type readingGenerator struct {
	rng *rand.Rand
}

// newReadingGenerator creates a generator for the given seed.
func newReadingGenerator(seed int64) *readingGenerator {
	return &readingGenerator{rng: rand.New(rand.NewSource(seed))}
}

// uniform returns a value in [lo, hi).
func (g *readingGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Next returns one synthetic reading within realistic sensor ranges.
func (g *readingGenerator) Next() rule.Reading {
	return rule.Reading{
		"temperature": g.uniform(-20, 50),
		"humidity":    g.uniform(10, 100),
		"pressure":    g.uniform(900, 1100),
	}
}
