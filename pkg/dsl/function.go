package dsl

import "github.com/aretw0/waypoint/pkg/domain"

// FunctionBuilder provides a fluent API for configuring a function.
type FunctionBuilder struct {
	fn domain.Function
}

// Named sets the display name (defaults to the reference id).
func (f *FunctionBuilder) Named(name string) *FunctionBuilder {
	f.fn.Name = name
	return f
}

// API configures an HTTP call.
func (f *FunctionBuilder) API(method, host, path string) *FunctionBuilder {
	f.fn.Type = domain.FunctionAPI
	f.fn.Config.Method = method
	f.fn.Config.Host = host
	f.fn.Config.Path = path
	return f
}

// Kafka marks the function as a Kafka publish.
func (f *FunctionBuilder) Kafka() *FunctionBuilder {
	f.fn.Type = domain.FunctionKafka
	return f
}

// Timeout sets the call timeout in milliseconds.
func (f *FunctionBuilder) Timeout(ms int) *FunctionBuilder {
	f.fn.Config.TimeoutMs = ms
	return f
}

// Header adds a constant header.
func (f *FunctionBuilder) Header(key, value string) *FunctionBuilder {
	f.fn.Config.Headers = append(f.fn.Config.Headers, domain.Header{Key: key, Type: domain.HeaderConstant, Value: value})
	return f
}

// HeaderFrom adds a header whose value is read from a property.
func (f *FunctionBuilder) HeaderFrom(key, property string) *FunctionBuilder {
	f.fn.Config.Headers = append(f.fn.Config.Headers, domain.Header{Key: key, Type: domain.HeaderProperty, Value: property})
	return f
}

// Body binds an API body field to a property.
func (f *FunctionBuilder) Body(apiField, property string) *FunctionBuilder {
	f.fn.Config.RequestBody = append(f.fn.Config.RequestBody, domain.RequestBodyField{APIField: apiField, Property: property})
	return f
}

// Inputs declares input properties as alternating key, type pairs.
func (f *FunctionBuilder) Inputs(pairs ...string) *FunctionBuilder {
	for i := 0; i+1 < len(pairs); i += 2 {
		f.fn.InputProperties = f.fn.InputProperties.Set(pairs[i], pairs[i+1])
	}
	return f
}

// Outputs declares output properties as alternating key, type pairs.
func (f *FunctionBuilder) Outputs(pairs ...string) *FunctionBuilder {
	for i := 0; i+1 < len(pairs); i += 2 {
		f.fn.OutputProperties = f.fn.OutputProperties.Set(pairs[i], pairs[i+1])
	}
	return f
}

// Build returns the function as declared.
func (f *FunctionBuilder) Build() domain.Function {
	return f.fn.Clone()
}
