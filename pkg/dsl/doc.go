/*
Package dsl provides a fluent builder for constructing journeys in Go code.

Everything goes through the journey model store, so a built journey obeys the same
rules as one edited by hand: unique keys, no self-loops or repeated edges, and
auto-derived variable mappings.

Example usage:

	b := dsl.New("Onboarding").Active()

	b.Property("age", domain.PropertyNumber)

	b.Function("score").
		API("POST", "https://scoring.internal", "/v1/score").
		Inputs("age", "NUMBER").
		Outputs("score", "NUMBER")

	b.Node("ask").Input("Ask age").Props("age").Go("score")
	b.Node("score").Loader("Score").Uses("score").Branch("score < 10", "stop")
	b.Node("stop").DeadEnd("Reject")

	journey, err := b.Build()
*/
package dsl
