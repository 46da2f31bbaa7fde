package result

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/openpmx/vpc/pkg/errors"
)

// Read decodes a Bundle from r and validates its modality.
func Read(r io.Reader) (*Bundle, error) {
	var b Bundle
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBundle, err, "decode bundle")
	}
	if !b.Modality.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidModality, "unknown modality: %q", b.Modality)
	}
	return &b, nil
}

// ReadFile loads a Bundle from a JSON file at path.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes b as indented JSON to w.
// The output can be re-imported with [Read] for round-trip processing.
func Write(b *Bundle, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a Bundle to a JSON file at path.
// This is a convenience wrapper around [Write] for file-based output.
func WriteFile(b *Bundle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(b, f)
}
