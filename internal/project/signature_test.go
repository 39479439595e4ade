package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSignature(t *testing.T) {
	valid := []string{"a", "System.Console", "_x.y_1.Z"}
	for _, s := range valid {
		if _, err := ParseSignature(s); err != nil {
			t.Errorf("ParseSignature(%q) failed: %v", s, err)
		}
	}
	invalid := []string{"", "1a", "a..b", "a.", ".a", "a-b", "a b"}
	for _, s := range invalid {
		if _, err := ParseSignature(s); err == nil {
			t.Errorf("ParseSignature(%q) accepted", s)
		}
	}
}

func TestSignatureParts(t *testing.T) {
	sig := MustSignature("System.Collections.List")
	if sig.ModuleName() != "System.Collections" || sig.StructName() != "List" {
		t.Fatalf("split = %q / %q", sig.ModuleName(), sig.StructName())
	}
	single := MustSignature("main")
	if single.ModuleName() != "" || single.StructName() != "main" {
		t.Fatalf("single split = %q / %q", single.ModuleName(), single.StructName())
	}
	if _, ok := single.Parent(); ok {
		t.Fatalf("single segment has a parent")
	}
	if got := MustSignature("System").Join("Console").String(); got != "System.Console" {
		t.Fatalf("Join = %q", got)
	}
}

func TestFromSlashNotation(t *testing.T) {
	cases := map[string]string{
		"./math.vs":       "math",
		"util/strings.vs": "util.strings",
		"a/./b/../c.vs":   "a.c",
	}
	for in, want := range cases {
		sig, err := FromSlashNotation(in)
		if err != nil {
			t.Fatalf("FromSlashNotation(%q): %v", in, err)
		}
		if sig.String() != want {
			t.Errorf("FromSlashNotation(%q) = %q, want %q", in, sig, want)
		}
	}
	if _, err := FromSlashNotation("../x.vs"); err == nil {
		t.Fatalf("parent-relative path accepted")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\n[build]\njobs = 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Config.Build.Entry != "main" || m.Config.Build.Jobs != 2 {
		t.Fatalf("unexpected build config %+v", m.Config.Build)
	}
	if m.OutputPath() != filepath.Join(dir, "build", "demo.vsbc") {
		t.Fatalf("OutputPath = %s", m.OutputPath())
	}

	found, ok, err := FindManifest(filepath.Join(dir))
	if err != nil || !ok || found != path {
		t.Fatalf("FindManifest = %q,%v,%v", found, ok, err)
	}
}

func TestLoadManifestRequiresPackage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte("[build]\nroot = \"src\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("manifest without [package] accepted")
	}
}

func TestDiscoverModules(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "util"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"main.vs", "util/math.vs", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	mods, err := DiscoverModules(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(mods) != 2 || mods[0].Sig.String() != "main" || mods[1].Sig.String() != "util.math" {
		t.Fatalf("unexpected modules %+v", mods)
	}
}
