package brief

// Brief is a declarative run request: the document to process and the
// scope identifiers for the pipeline run.
type Brief struct {
	Kind       string    `yaml:"kind"`
	APIVersion string    `yaml:"apiVersion"`
	Spec       BriefSpec `yaml:"spec"`
}

type BriefSpec struct {
	// DocumentPath points at the requirements document text file.
	DocumentPath string `yaml:"documentPath"`
	// Document inlines the requirements text; used when DocumentPath is empty.
	Document  string            `yaml:"document,omitempty"`
	SessionID string            `yaml:"sessionId,omitempty"` // generated when empty
	ActorID   string            `yaml:"actorId"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
}
