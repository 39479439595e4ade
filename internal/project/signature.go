package project

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var signaturePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Signature is a validated dotted qualified name such as System.Console.
// The zero value is the empty signature and is never produced by Parse.
type Signature struct {
	name string
}

// ParseSignature validates name and wraps it.
func ParseSignature(name string) (Signature, error) {
	if !signaturePattern.MatchString(name) {
		return Signature{}, fmt.Errorf("invalid signature %q", name)
	}
	return Signature{name: name}, nil
}

// MustSignature is ParseSignature for literals known to be valid.
func MustSignature(name string) Signature {
	sig, err := ParseSignature(name)
	if err != nil {
		panic(err)
	}
	return sig
}

// FromSlashNotation maps a module path like "./util/math.vs" to util.math.
func FromSlashNotation(p string) (Signature, error) {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "./")
	clean = strings.TrimSuffix(clean, path.Ext(clean))
	return ParseSignature(strings.ReplaceAll(clean, "/", "."))
}

// Join appends a segment without validation; both parts must already be valid.
func (s Signature) Join(segment string) Signature {
	if s.name == "" {
		return Signature{name: segment}
	}
	return Signature{name: s.name + "." + segment}
}

// ModuleName is everything before the last dot, or "" for a single segment.
func (s Signature) ModuleName() string {
	if i := strings.LastIndexByte(s.name, '.'); i >= 0 {
		return s.name[:i]
	}
	return ""
}

// StructName is the last segment.
func (s Signature) StructName() string {
	if i := strings.LastIndexByte(s.name, '.'); i >= 0 {
		return s.name[i+1:]
	}
	return s.name
}

// Parent returns the signature of ModuleName; ok is false for a single segment.
func (s Signature) Parent() (Signature, bool) {
	m := s.ModuleName()
	if m == "" {
		return Signature{}, false
	}
	return Signature{name: m}, true
}

// Segments splits the name at dots.
func (s Signature) Segments() []string {
	if s.name == "" {
		return nil
	}
	return strings.Split(s.name, ".")
}

func (s Signature) IsZero() bool { return s.name == "" }

func (s Signature) String() string { return s.name }
