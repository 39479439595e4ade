package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vsharp/internal/buildpipeline"
	"vsharp/internal/diagfmt"
	"vsharp/internal/source"
	"vsharp/internal/vm"
)

type outputFlags struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readOutputFlags(cmd *cobra.Command) (outputFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var out outputFlags
	colorMode, err := flags.GetString("color")
	if err != nil {
		return out, fmt.Errorf("failed to get color flag: %w", err)
	}
	if out.color, err = diagfmt.ColorEnabled(colorMode, os.Stderr); err != nil {
		return out, err
	}
	if out.quiet, err = flags.GetBool("quiet"); err != nil {
		return out, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.timings, err = flags.GetBool("timings"); err != nil {
		return out, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if out.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return out, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return out, nil
}

// reportCompile prints the diagnostics of a failed compilation. Errors
// that carry no diagnostics are returned unchanged.
func reportCompile(w io.Writer, res *buildpipeline.CompileResult, err error, baseDir string, out outputFlags) error {
	if err == nil {
		return nil
	}
	if res == nil || res.Bag == nil || res.Bag.Len() == 0 {
		return err
	}
	opts := diagfmt.PrettyOpts{
		Color:     out.color,
		Context:   1,
		BaseDir:   baseDir,
		ShowNotes: true,
	}
	if perr := diagfmt.Pretty(w, res.Bag, res.Files, opts); perr != nil {
		return errors.Join(err, perr)
	}
	fmt.Fprintf(w, "%s (%d %s)\n", buildpipeline.ErrCompile, res.Bag.Len(), plural(res.Bag.Len(), "error"))
	return errReported
}

// reportRuntime prints a VM panic with its backtrace.
func reportRuntime(w io.Writer, res *buildpipeline.CompileResult, err error) error {
	var vmErr *vm.VMError
	if !errors.As(err, &vmErr) {
		return err
	}
	var files *source.FileSet
	if res != nil {
		files = res.Files
	}
	fmt.Fprint(w, vmErr.FormatWithFiles(files))
	return errReported
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
