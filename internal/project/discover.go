package project

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

const (
	// SourceExt is the extension of script modules.
	SourceExt = ".vs"
	// ArtifactExt is the extension of compiled programs.
	ArtifactExt = ".vsbc"
)

// ModuleFile ties a source file to the signature other modules import it by.
type ModuleFile struct {
	Sig  Signature
	Path string
}

// DiscoverModules lists every .vs file under root, sorted by signature.
func DiscoverModules(root string) ([]ModuleFile, error) {
	var out []ModuleFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && len(d.Name()) > 0 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		sig, err := FromSlashNotation(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, ModuleFile{Sig: sig, Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sig.String() < out[j].Sig.String() })
	return out, nil
}
