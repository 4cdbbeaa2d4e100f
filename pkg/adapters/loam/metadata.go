package loam

// documentKind marks frontmatter written by this store so List skips other notes.
const documentKind = "waypoint/journey"

// JourneyMetadata is the frontmatter of a journey document. The human-readable
// body is regenerated on every save; Payload holds the canonical JSON.
type JourneyMetadata struct {
	Kind      string `json:"kind" mapstructure:"kind"`
	ID        string `json:"id" mapstructure:"id"`
	Name      string `json:"name" mapstructure:"name"`
	IsActive  bool   `json:"is_active" mapstructure:"is_active"`
	UpdatedAt string `json:"updated_at" mapstructure:"updated_at"`
	Payload   string `json:"payload" mapstructure:"payload"`
}
