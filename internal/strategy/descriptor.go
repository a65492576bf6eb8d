package strategy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DescriptorExtensions are the file extensions scanned for descriptors
var DescriptorExtensions = []string{".yaml", ".yml"}

// ParseDescriptor decodes and validates descriptor YAML
func ParseDescriptor(data []byte) (*Descriptor, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty descriptor")
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDescriptor reads a descriptor file
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the strategy directory scan
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return ParseDescriptor(data)
}

// MarshalDescriptor encodes d as commented YAML
func MarshalDescriptor(d *Descriptor) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("descriptor cannot be nil")
	}

	var buf bytes.Buffer
	buf.WriteString("# Strategy descriptor\n")
	buf.WriteString(fmt.Sprintf("# Schema Version: %s\n\n", d.Metadata.SchemaVersion))

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode descriptor to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close YAML encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDescriptor validates d and writes it to path
func WriteDescriptor(d *Descriptor, path string) error {
	if d == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}

	out := *d
	out.Metadata.UpdatedAt = time.Now().UTC()
	if out.Metadata.SchemaVersion == "" {
		out.Metadata.SchemaVersion = SchemaVersion
	}
	if err := out.Validate(); err != nil {
		return err
	}

	data, err := MarshalDescriptor(&out)
	if err != nil {
		return err
	}

	// Ensure directory exists with restrictive permissions
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}
