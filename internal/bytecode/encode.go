package bytecode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

var magic = [4]byte{'V', 'S', 'B', 'C'}

// ErrBadArtifact reports input that is not a compiled program.
var ErrBadArtifact = errors.New("not a vsharp artifact")

// Encode writes p as a msgpack artifact.
func Encode(w io.Writer, p *Program) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(p)
}

// Decode reads an artifact written by Encode.
func Decode(r io.Reader) (*Program, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if head != magic {
		return nil, ErrBadArtifact
	}
	p := &Program{}
	if err := msgpack.NewDecoder(r).Decode(p); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: schema %d, want %d", ErrBadArtifact, p.Schema, SchemaVersion)
	}
	p.SortModules()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	return p, nil
}

// WriteFile writes the artifact atomically.
func WriteFile(path string, p *Program) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".vsbc-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	bw := bufio.NewWriter(f)
	if err = Encode(bw, p); err != nil {
		_ = f.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile loads an artifact from disk.
func ReadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(bufio.NewReader(f))
}
