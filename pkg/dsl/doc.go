/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing wizard flows.

It allows developers to define questionnaires using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for dynamic flow
generation, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New()

	b.Add("start").
		Text("Personal or Business?").
		SaveTo("coverage_category").
		Button("Personal", "personal", "collect_contact").
		Button("Business", "business", "collect_contact")

	b.Add("collect_contact").
		Text("How can we reach you?")

	// The resulting store goes through the same validation as flow files.
	store, err := b.Build()
	// ... pass store to wizard.New(...)
*/
package dsl
