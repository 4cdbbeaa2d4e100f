package domain

// PropertyType is the declared type of a Property value.
type PropertyType string

const (
	PropertyString    PropertyType = "STRING"
	PropertyNumber    PropertyType = "NUMBER"
	PropertyBoolean   PropertyType = "BOOLEAN"
	PropertyDate      PropertyType = "DATE"
	PropertyTimestamp PropertyType = "TIMESTAMP"
	PropertyRange     PropertyType = "RANGE"
	PropertyList      PropertyType = "LIST"
	PropertyMap       PropertyType = "MAP"
)

// PropertyTypes lists every PropertyType in display order.
var PropertyTypes = []PropertyType{
	PropertyString, PropertyNumber, PropertyBoolean, PropertyDate,
	PropertyTimestamp, PropertyRange, PropertyList, PropertyMap,
}

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Property is a named, typed value in the journey vocabulary.
type Property struct {
	ID   string       `json:"id" yaml:"id"`
	Key  string       `json:"key" yaml:"key" validate:"required"`
	Type PropertyType `json:"type" yaml:"type" validate:"required,oneof=STRING NUMBER BOOLEAN DATE TIMESTAMP RANGE LIST MAP"`

	// ValidationCondition is an opaque expression; it is stored, never evaluated.
	ValidationCondition string `json:"validationCondition,omitempty" yaml:"validationCondition,omitempty"`
}
