package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vsharp/internal/buildpipeline"
	"vsharp/internal/project"
)

const noManifestMessage = "no " + project.ManifestName + " found; pass a module directory or a " + project.SourceExt + " file"

// target is what a command compiles: a module root or a single file,
// plus the entry point and artifact path that go with it.
type target struct {
	root    string
	sources []buildpipeline.Source
	baseDir string
	entry   string
	main    string
	output  string
	jobs    int
}

// resolveTarget picks the input from args, falling back to the manifest
// found by walking up from the working directory.
func resolveTarget(args []string) (*target, error) {
	if len(args) == 0 {
		path, found, err := project.FindManifest(".")
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.New(noManifestMessage)
		}
		return targetFromManifest(path)
	}
	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		manifest := filepath.Join(input, project.ManifestName)
		if _, err := os.Stat(manifest); err == nil {
			return targetFromManifest(manifest)
		}
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, err
		}
		return &target{
			root:    abs,
			baseDir: abs,
			entry:   "main",
			output:  filepath.Join(abs, "build", filepath.Base(abs)+project.ArtifactExt),
		}, nil
	}
	if filepath.Ext(input) != project.SourceExt {
		return nil, fmt.Errorf("%s: expected a %s file", input, project.SourceExt)
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(abs), project.SourceExt)
	sig, err := project.ParseSignature(stem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return &target{
		sources: []buildpipeline.Source{{Sig: sig, Path: abs}},
		baseDir: filepath.Dir(abs),
		entry:   sig.String(),
		output:  strings.TrimSuffix(abs, project.SourceExt) + project.ArtifactExt,
	}, nil
}

func targetFromManifest(path string) (*target, error) {
	m, err := project.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return &target{
		root:    m.RootDir(),
		baseDir: m.Dir,
		entry:   m.Config.Build.Entry,
		main:    m.Config.Run.Main,
		output:  m.OutputPath(),
		jobs:    m.Config.Build.Jobs,
	}, nil
}

// modules lists the module names the target will compile, for display.
func (t *target) modules() []string {
	if len(t.sources) > 0 {
		out := make([]string, len(t.sources))
		for i, s := range t.sources {
			out[i] = s.Sig.String()
		}
		return out
	}
	files, err := project.DiscoverModules(t.root)
	if err != nil {
		return nil
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Sig.String()
	}
	return out
}

func (t *target) compileRequest(maxDiagnostics int) buildpipeline.CompileRequest {
	return buildpipeline.CompileRequest{
		Root:           t.root,
		Sources:        t.sources,
		Stdout:         os.Stdout,
		Jobs:           t.jobs,
		MaxDiagnostics: maxDiagnostics,
	}
}
