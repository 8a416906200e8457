package brief

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadFromFile(path string) (*Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read brief file: %w", err)
	}

	var b Brief
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse brief file: %w", err)
	}

	if err := validate(&b); err != nil {
		return nil, fmt.Errorf("invalid brief definition: %w", err)
	}

	return &b, nil
}

func validate(b *Brief) error {
	if b.Kind != "Brief" {
		return fmt.Errorf("kind must be 'Brief', got '%s'", b.Kind)
	}

	if b.Spec.DocumentPath == "" && b.Spec.Document == "" {
		return fmt.Errorf("spec.documentPath or spec.document is required")
	}

	if b.Spec.ActorID == "" {
		return fmt.Errorf("spec.actorId is required")
	}

	return nil
}

// DocumentText returns the inline document or reads it from DocumentPath.
func (b *Brief) DocumentText() (string, error) {
	if b.Spec.Document != "" {
		return b.Spec.Document, nil
	}
	data, err := os.ReadFile(b.Spec.DocumentPath)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}
