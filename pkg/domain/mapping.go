package domain

// MappingType is the direction of a variable binding.
type MappingType string

const (
	MappingInput  MappingType = "INPUT"
	MappingOutput MappingType = "OUTPUT"
)

// StrategyDirect is the strategy seeded on derived variable mappings.
const StrategyDirect = "DIRECT"

// DerivationState tracks whether a mapping's variable list was generated or edited.
type DerivationState string

const (
	// DerivationEmpty: no function selected yet, nothing generated.
	DerivationEmpty DerivationState = "empty"
	// DerivationAutoDerived: the list was generated from the selected function.
	DerivationAutoDerived DerivationState = "auto_derived"
	// DerivationUserEdited: the list was written or touched by hand. Never re-derived.
	DerivationUserEdited DerivationState = "user_edited"
)

// VariableMapping binds one function input or output to a journey value.
type VariableMapping struct {
	ID                       string      `json:"id" yaml:"id"`
	MappingType              MappingType `json:"mappingType" yaml:"mappingType" validate:"required,oneof=INPUT OUTPUT"`
	Strategy                 string      `json:"strategy" yaml:"strategy"`
	SourceVariableName       string      `json:"sourceVariableName" yaml:"sourceVariableName"`
	SourceVariableType       string      `json:"sourceVariableType" yaml:"sourceVariableType"`
	SourceVariableExpression string      `json:"sourceVariableExpression" yaml:"sourceVariableExpression"`
	Mandatory                bool        `json:"mandatory" yaml:"mandatory"`
	TargetParameterName      string      `json:"targetParameterName" yaml:"targetParameterName"`
	TargetParameterType      string      `json:"targetParameterType" yaml:"targetParameterType"`
	TransformationExpression *string     `json:"transformationExpression" yaml:"transformationExpression"`
	DefaultValue             *string     `json:"defaultValue" yaml:"defaultValue"`
}

// NodeFunctionMapping binds a function invocation to a node.
type NodeFunctionMapping struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	NodeID      string `json:"nodeId" yaml:"nodeId" validate:"required"`
	FunctionID  string `json:"functionId" yaml:"functionId" validate:"required"`

	// Condition guards the invocation. Opaque.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// VariableMappings nil means "not provided"; the store derives it on add.
	VariableMappings []VariableMapping `json:"variableMappings" yaml:"variableMappings" validate:"dive"`

	Derivation DerivationState `json:"derivation,omitempty" yaml:"derivation,omitempty"`
}

// Binds reports whether the mapping joins nodeID and functionID.
func (m NodeFunctionMapping) Binds(nodeID, functionID string) bool {
	return m.NodeID == nodeID && m.FunctionID == functionID
}

// DerivedID returns the id a derived variable mapping gets for key.
func DerivedID(t MappingType, key string) string {
	if t == MappingOutput {
		return "output_" + key
	}
	return "input_" + key
}

// DeriveVariableMappings returns existing followed by one entry per declared input and
// output key of fn that existing does not already cover (matched by derived id).
// Calling it again with its own result returns the same list.
func DeriveVariableMappings(fn Function, existing []VariableMapping) []VariableMapping {
	out := CloneVariableMappings(existing)
	if out == nil {
		out = []VariableMapping{}
	}
	have := make(map[string]bool, len(out))
	for _, vm := range out {
		have[vm.ID] = true
	}
	add := func(t MappingType, entries Entries) {
		for _, entry := range entries {
			id := DerivedID(t, entry.Key)
			if have[id] {
				continue
			}
			have[id] = true
			out = append(out, VariableMapping{
				ID:                 id,
				MappingType:        t,
				Strategy:           StrategyDirect,
				SourceVariableName: entry.Key,
				SourceVariableType: entry.Value,
			})
		}
	}
	add(MappingInput, fn.InputProperties)
	add(MappingOutput, fn.OutputProperties)
	return out
}

// CloneVariableMappings deep-copies a variable mapping list.
func CloneVariableMappings(in []VariableMapping) []VariableMapping {
	if in == nil {
		return nil
	}
	out := make([]VariableMapping, len(in))
	for i, vm := range in {
		vm.TransformationExpression = cloneString(vm.TransformationExpression)
		vm.DefaultValue = cloneString(vm.DefaultValue)
		out[i] = vm
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
