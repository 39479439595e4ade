package symbols

import (
	"fmt"

	"vsharp/internal/project"
)

// ModuleDescriptor names the source of an import. The set of variants is
// closed: Native, Script and SymbolAccess.
type ModuleDescriptor interface {
	isModule()
	String() string
}

// Native is a host namespace such as System.Console.
type Native struct {
	Sig project.Signature
}

// Script is a sibling source module referenced by relative path.
type Script struct {
	Path string
}

// SymbolAccess is a single symbol selected from Parent.
type SymbolAccess struct {
	Name   string
	Parent ModuleDescriptor
}

func (Native) isModule()       {}
func (Script) isModule()       {}
func (SymbolAccess) isModule() {}

func (n Native) String() string { return n.Sig.String() }

func (s Script) String() string { return fmt.Sprintf("%q", s.Path) }

func (a SymbolAccess) String() string { return a.Parent.String() + "::" + a.Name }

// ScriptSignature maps a Script path to the signature of the module it names.
func ScriptSignature(s Script) (project.Signature, error) {
	return project.FromSlashNotation(s.Path)
}

// Imports is a module's import table keyed by the local alias.
type Imports struct {
	byName map[string]ModuleDescriptor
}

func NewImports() *Imports {
	return &Imports{byName: make(map[string]ModuleDescriptor)}
}

// Bind registers alias; it reports false when alias is already taken.
func (im *Imports) Bind(alias string, desc ModuleDescriptor) bool {
	if _, exists := im.byName[alias]; exists {
		return false
	}
	im.byName[alias] = desc
	return true
}

func (im *Imports) Lookup(alias string) (ModuleDescriptor, bool) {
	d, ok := im.byName[alias]
	return d, ok
}

func (im *Imports) Len() int { return len(im.byName) }
