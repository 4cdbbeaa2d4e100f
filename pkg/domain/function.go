package domain

// FunctionType is the transport family of a Function.
type FunctionType string

const (
	FunctionAPI   FunctionType = "API"
	FunctionKafka FunctionType = "KAFKA"
)

// HeaderType says whether a header value is a literal or a property key.
type HeaderType string

const (
	HeaderConstant HeaderType = "constant"
	HeaderProperty HeaderType = "property"
)

// Timeout bounds for FunctionConfig.TimeoutMs.
const (
	DefaultTimeoutMs = 30000
	MinTimeoutMs     = 1000
	MaxTimeoutMs     = 300000
)

// Header is one outgoing request header.
type Header struct {
	Key   string     `json:"key" yaml:"key" validate:"required"`
	Type  HeaderType `json:"type" yaml:"type" validate:"required,oneof=constant property"`
	Value string     `json:"value" yaml:"value"`
}

// RequestBodyField binds an API body field to a property key.
type RequestBodyField struct {
	ID       string `json:"id" yaml:"id"`
	APIField string `json:"apiField" yaml:"apiField" validate:"required"`
	Property string `json:"property" yaml:"property" validate:"required"`
}

// FunctionConfig describes how the operation is reached.
type FunctionConfig struct {
	Host   string `json:"host,omitempty" yaml:"host,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,oneof=GET POST PUT DELETE"`

	Headers         []Header           `json:"headers,omitempty" yaml:"headers,omitempty" validate:"dive"`
	HeaderParams    Entries            `json:"header_params,omitempty" yaml:"header_params,omitempty"`
	RequestBody     []RequestBodyField `json:"requestBody,omitempty" yaml:"requestBody,omitempty" validate:"dive"`
	RequestBodyPath Entries            `json:"requestBodyPath,omitempty" yaml:"requestBodyPath,omitempty"`

	// TimeoutMs is the call timeout; zero means DefaultTimeoutMs.
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty" validate:"omitempty,min=1000,max=300000"`
}

// Timeout returns the effective timeout in milliseconds.
func (c FunctionConfig) Timeout() int {
	if c.TimeoutMs == 0 {
		return DefaultTimeoutMs
	}
	return c.TimeoutMs
}

// Function is an invocable external operation with a typed contract.
type Function struct {
	ReferenceID string         `json:"referenceId" yaml:"referenceId"`
	Name        string         `json:"name" yaml:"name" validate:"required"`
	Type        FunctionType   `json:"type" yaml:"type" validate:"required,oneof=API KAFKA"`
	Config      FunctionConfig `json:"config" yaml:"config"`

	InputProperties  Entries `json:"inputProperties" yaml:"inputProperties"`
	OutputProperties Entries `json:"outputProperties" yaml:"outputProperties"`
}

// ReferencedInputKeys returns the property keys named by property-typed headers and by
// requestBody entries, in declaration order and without repeats.
func (f Function) ReferencedInputKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, h := range f.Config.Headers {
		if h.Type == HeaderProperty {
			add(h.Value)
		}
	}
	for _, b := range f.Config.RequestBody {
		add(b.Property)
	}
	return keys
}

// FunctionField names one of the map-shaped fields of a Function.
type FunctionField string

const (
	FieldInputProperties  FunctionField = "inputProperties"
	FieldOutputProperties FunctionField = "outputProperties"
	FieldHeaderParams     FunctionField = "header_params"
	FieldRequestBodyPath  FunctionField = "requestBodyPath"
)

// Entries returns the list stored under field.
func (f Function) Entries(field FunctionField) (Entries, bool) {
	switch field {
	case FieldInputProperties:
		return f.InputProperties, true
	case FieldOutputProperties:
		return f.OutputProperties, true
	case FieldHeaderParams:
		return f.Config.HeaderParams, true
	case FieldRequestBodyPath:
		return f.Config.RequestBodyPath, true
	}
	return nil, false
}

// WithEntries returns a copy of f with field replaced.
func (f Function) WithEntries(field FunctionField, e Entries) (Function, bool) {
	switch field {
	case FieldInputProperties:
		f.InputProperties = e
	case FieldOutputProperties:
		f.OutputProperties = e
	case FieldHeaderParams:
		f.Config.HeaderParams = e
	case FieldRequestBodyPath:
		f.Config.RequestBodyPath = e
	default:
		return f, false
	}
	return f, true
}

// MergeFunctions lists the journey's own functions followed by catalog functions it
// does not define, keyed by ReferenceID. A journey definition shadows the catalog one.
func MergeFunctions(journey, catalog []Function) []Function {
	out := make([]Function, 0, len(journey)+len(catalog))
	seen := make(map[string]bool, len(journey))
	for _, f := range journey {
		seen[f.ReferenceID] = true
		out = append(out, f.Clone())
	}
	for _, f := range catalog {
		if seen[f.ReferenceID] {
			continue
		}
		seen[f.ReferenceID] = true
		out = append(out, f.Clone())
	}
	return out
}
