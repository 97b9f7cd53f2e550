package persist

import (
	"errors"
	"fmt"
)

// ErrVersionMismatch indicates a persisted state written by an incompatible format version.
var ErrVersionMismatch = errors.New("state version mismatch")

// Versioned is implemented by states that carry a format version.
type Versioned interface {
	StateVersion() int
}

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	codec   Codec
	version int
}

// NewPersister creates a persister for T. When version is positive and T
// implements Versioned, Load rejects states carrying a different version.
func NewPersister[T any](codec Codec, version int) *Persister[T] {
	return &Persister[T]{codec: codec, version: version}
}

// Extension returns the file extension of the underlying codec.
func (p *Persister[T]) Extension() string {
	return p.codec.Extension()
}

// Save writes state to path.
func (p *Persister[T]) Save(path string, state *T) error {
	return SaveFile(path, p.codec, state)
}

// Load reads a state from path.
func (p *Persister[T]) Load(path string) (*T, error) {
	var state T

	err := LoadFile(path, p.codec, &state)
	if err != nil {
		return nil, err
	}

	if p.version > 0 {
		if versioned, ok := any(&state).(Versioned); ok && versioned.StateVersion() != p.version {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, versioned.StateVersion(), p.version)
		}
	}

	return &state, nil
}
