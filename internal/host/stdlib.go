package host

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"vsharp/internal/project"
)

// StringBuilder is exposed to scripts as System.Strings.Builder.
type StringBuilder struct {
	sb strings.Builder
}

func (b *StringBuilder) Append(s string) { b.sb.WriteString(s) }

func (b *StringBuilder) AppendInt(n int64) { b.sb.WriteString(strconv.FormatInt(n, 10)) }

func (b *StringBuilder) Len() int32 { return int32(b.sb.Len()) }

func (b *StringBuilder) String() string { return b.sb.String() }

// NewStdRegistry returns a registry with System.Console, System.Math,
// System.Strings and the str extension methods. Console output goes to out.
func NewStdRegistry(out io.Writer) (*Registry, error) {
	r := NewRegistry()
	if err := registerStd(r, out); err != nil {
		return nil, fmt.Errorf("std registry: %w", err)
	}
	return r, nil
}

type registration struct {
	name string
	fn   any
}

func registerAll(ns *Namespace, regs []registration) error {
	for _, reg := range regs {
		if err := ns.Func(reg.name, reg.fn); err != nil {
			return err
		}
	}
	return nil
}

func registerStd(r *Registry, out io.Writer) error {
	console := r.Namespace(project.MustSignature("System.Console"))
	err := registerAll(console, []registration{
		{"WriteLine", func(s string) error {
			_, err := fmt.Fprintln(out, s)
			return err
		}},
		{"Write", func(s string) error {
			_, err := io.WriteString(out, s)
			return err
		}},
		{"WriteInt", func(n int64) error {
			_, err := fmt.Fprintln(out, n)
			return err
		}},
		{"WriteFloat", func(f float64) error {
			_, err := fmt.Fprintln(out, strconv.FormatFloat(f, 'g', -1, 64))
			return err
		}},
	})
	if err != nil {
		return err
	}

	mathNS := r.Namespace(project.MustSignature("System.Math"))
	err = registerAll(mathNS, []registration{
		{"Sqrt", math.Sqrt},
		{"Abs", math.Abs},
		{"Pow", math.Pow},
		{"Max", func(a, b int32) int32 { return max(a, b) }},
		{"Min", func(a, b int32) int32 { return min(a, b) }},
	})
	if err != nil {
		return err
	}

	stringsNS := r.Namespace(project.MustSignature("System.Strings"))
	stringsNS.Type("Builder", reflect.TypeFor[*StringBuilder]())
	err = registerAll(stringsNS, []registration{
		{"Concat", func(a, b string) string { return a + b }},
		{"FromInt", func(n int64) string { return strconv.FormatInt(n, 10) }},
		{"FromFloat", func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }},
		{"Len", func(s string) int32 { return int32(len(s)) }},
		{"ToInt", func(s string) (int32, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
			return int32(n), err
		}},
		{"NewBuilder", func() *StringBuilder { return &StringBuilder{} }},
	})
	if err != nil {
		return err
	}

	for _, ext := range []registration{
		{"len", func(s string) int32 { return int32(len(s)) }},
		{"upper", strings.ToUpper},
		{"lower", strings.ToLower},
		{"contains", strings.Contains},
	} {
		if err := r.Extend(ext.name, ext.fn); err != nil {
			return err
		}
	}
	return nil
}
