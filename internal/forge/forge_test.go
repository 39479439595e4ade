package forge

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"vsharp/internal/diag"
	"vsharp/internal/host"
	"vsharp/internal/types"
)

func obj(fields ...types.Field) types.Object { return types.NewObject(fields...) }

func fld(name string, t types.Tp) types.Field { return types.Field{Name: name, Type: t} }

func TestFindSubsetsRequiresFinalize(t *testing.T) {
	f := NewInterfaceForge()
	defer f.Finalize()
	_, err := f.FindSubsets(obj(fld("x", types.I32)))
	var de *diag.Error
	if !errors.As(err, &de) || de.Code != diag.BldForgeNotFinalized {
		t.Fatalf("expected BldForgeNotFinalized, got %v", err)
	}
}

func TestReportAfterFinalize(t *testing.T) {
	f := NewInterfaceForge()
	f.Finalize()
	f.Finalize()
	if err := f.Report(obj(fld("x", types.I32))); err == nil {
		t.Fatalf("expected error reporting after Finalize")
	}
	if err := f.Report(types.I32); err != nil {
		t.Fatalf("non-object report should be ignored, got %v", err)
	}
}

func TestFindSubsets(t *testing.T) {
	f := NewInterfaceForge()
	xy := obj(fld("x", types.I32), fld("y", types.I32))
	x := obj(fld("x", types.I32))
	y := obj(fld("y", types.Str))
	generic := obj(fld("x", types.Generic{Index: 0}))
	nested := obj(fld("p", x))
	for _, s := range []types.Tp{xy, x, y, generic, types.Array{Item: nested}} {
		if err := f.Report(s); err != nil {
			t.Fatalf("Report: %v", err)
		}
	}
	f.Finalize()

	shapes, err := f.Shapes()
	if err != nil {
		t.Fatalf("Shapes: %v", err)
	}
	if len(shapes) != 5 {
		t.Fatalf("expected 5 shapes, got %d: %v", len(shapes), shapes)
	}

	cases := []struct {
		name     string
		concrete types.Object
		want     []string
	}{
		{"exact and subsets", xy, []string{types.Key(generic), types.Key(x), types.Key(xy)}},
		{"wider concrete", obj(fld("x", types.I32), fld("y", types.I32), fld("z", types.Bool)), []string{types.Key(generic), types.Key(x), types.Key(xy)}},
		{"field type mismatch", obj(fld("y", types.I32)), nil},
		{"generic binds any", obj(fld("x", types.Str)), []string{types.Key(generic)}},
		{"nested", obj(fld("p", xy)), []string{types.Key(nested)}},
		{"generic concrete field", generic, []string{types.Key(generic), types.Key(x)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.FindSubsets(tc.concrete)
			if err != nil {
				t.Fatalf("FindSubsets: %v", err)
			}
			want := append([]string(nil), tc.want...)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range got {
				if types.Key(got[i]) != want[i] {
					t.Errorf("subset %d = %s, want %s", i, types.Key(got[i]), want[i])
				}
			}
		})
	}
}

func TestConcurrentReports(t *testing.T) {
	f := NewInterfaceForge()
	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := f.Report(obj(fld(n, types.I32))); err != nil {
					t.Errorf("Report: %v", err)
				}
			}
		}(names[i])
	}
	wg.Wait()
	f.Finalize()
	shapes, err := f.Shapes()
	if err != nil {
		t.Fatalf("Shapes: %v", err)
	}
	if len(shapes) != len(names) {
		t.Fatalf("expected %d distinct shapes, got %d", len(names), len(shapes))
	}
}

func TestClassForge(t *testing.T) {
	ifaces := NewInterfaceForge()
	b := host.NewBuilder()
	c := NewClassForge(ifaces, b)

	xy := obj(fld("x", types.I32), fld("y", types.I32))
	x := obj(fld("x", types.I32))
	if err := c.Reserve(xy); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := ifaces.Report(x); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if _, err := c.Class(xy); err == nil {
		t.Fatalf("expected Class to fail before Finalize")
	}
	ifaces.Finalize()
	if err := c.SynthesizeReserved(); err != nil {
		t.Fatalf("SynthesizeReserved: %v", err)
	}

	cls, err := c.Class(xy)
	if err != nil {
		t.Fatalf("Class: %v", err)
	}
	again, _ := c.Class(xy)
	if cls != again {
		t.Fatalf("class not memoized")
	}
	if len(b.Classes()) != 1 {
		t.Fatalf("expected one class, got %d", len(b.Classes()))
	}
	if got := cls.Fields; len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("fields = %v", got)
	}

	ix, err := c.Interface(x)
	if err != nil {
		t.Fatalf("Interface: %v", err)
	}
	if !cls.Implements(ix.ID) {
		t.Fatalf("class %s should implement %s", cls.Name, ix.Name)
	}
	if cls.Impl[ix.ID][ix.PropIndex("x")] != cls.FieldIndex("x") {
		t.Fatalf("property x mapped to wrong field")
	}
	ixy, _ := c.Interface(xy)
	if !cls.Implements(ixy.ID) {
		t.Fatalf("class should implement its own shape")
	}
	if len(b.Interfaces()) != 2 {
		t.Fatalf("expected 2 interfaces, got %d", len(b.Interfaces()))
	}
}
