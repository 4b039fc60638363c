package rule

// Rule binds a condition to an action string.
//
// Rules are immutable value objects: once stored, neither the condition nor
// the action changes. The ID is assigned by the storage backend on add and is
// opaque to callers.
type Rule struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// Reading is one IoT message: a flat mapping of sensor field name to
// numeric value.
type Reading map[string]float64

// New creates an unstored rule. The ID is empty until a backend assigns one.
func New(condition, action string) Rule {
	return Rule{Condition: condition, Action: action}
}
