// Package rule defines the Rule value object and the condition language
// evaluated against sensor readings.
//
// A condition is a single binary comparison of the form
//
//	<field><op><literal>
//
// where op is one of ==, !=, > or <, and literal is a floating-point
// number. There is no boolean composition and no nesting; a rule either
// matches a reading or it does not. Conditions are validated once, when a
// rule is added, so evaluation never fails.
package rule
