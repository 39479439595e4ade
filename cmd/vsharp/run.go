package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vsharp/internal/buildpipeline"
	"vsharp/internal/bytecode"
	"vsharp/internal/host"
	"vsharp/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [path]",
	Short: "Compile and run the entry module",
	Long: `Run compiles the input, executes the initializer of the entry module and
then, when --main is set, calls that function of the entry module. With
--artifact a previously built .vsbc file is loaded instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExecution,
}

func init() {
	runCmd.Flags().String("artifact", "", "run a built .vsbc artifact")
	runCmd.Flags().String("entry", "", "module whose initializer runs (default main)")
	runCmd.Flags().String("main", "", "function of the entry module to call after the initializer")
	runCmd.Flags().Int("max-depth", vm.DefaultMaxDepth, "maximum call depth")
	runCmd.Flags().Bool("trace-vm", false, "trace executed instructions to stderr")
}

type runOptions struct {
	artifact string
	entry    string
	main     string
	maxDepth int
	traceVM  bool
}

func readRunOptions(cmd *cobra.Command) (runOptions, error) {
	var opts runOptions
	var err error
	if opts.artifact, err = cmd.Flags().GetString("artifact"); err != nil {
		return opts, err
	}
	if opts.entry, err = cmd.Flags().GetString("entry"); err != nil {
		return opts, err
	}
	if opts.main, err = cmd.Flags().GetString("main"); err != nil {
		return opts, err
	}
	if opts.maxDepth, err = cmd.Flags().GetInt("max-depth"); err != nil {
		return opts, err
	}
	if opts.traceVM, err = cmd.Flags().GetBool("trace-vm"); err != nil {
		return opts, err
	}
	return opts, nil
}

func runExecution(cmd *cobra.Command, args []string) (err error) {
	opts, err := readRunOptions(cmd)
	if err != nil {
		return err
	}
	out, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	if opts.artifact != "" && len(args) > 0 {
		return errors.New("--artifact and a source path are mutually exclusive")
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	var (
		prog *bytecode.Program
		reg  *host.Registry
		res  *buildpipeline.CompileResult
	)
	entry, mainFn := opts.entry, opts.main
	if opts.artifact != "" {
		if prog, err = bytecode.ReadFile(opts.artifact); err != nil {
			return err
		}
		if reg, err = host.NewStdRegistry(os.Stdout); err != nil {
			return err
		}
		if entry == "" {
			entry = "main"
		}
	} else {
		tgt, terr := resolveTarget(args)
		if terr != nil {
			return terr
		}
		if entry == "" {
			entry = tgt.entry
		}
		if mainFn == "" {
			mainFn = tgt.main
		}
		req := tgt.compileRequest(out.maxDiagnostics)
		var cerr error
		res, cerr = buildpipeline.Compile(cmd.Context(), &req)
		if cerr != nil {
			return reportCompile(cmd.ErrOrStderr(), res, cerr, tgt.baseDir, out)
		}
		prog, reg = res.Program, res.Registry
	}
	if err = buildpipeline.ValidateEntry(prog, entry, mainFn); err != nil {
		return err
	}

	vmOpts := vm.Options{MaxDepth: opts.maxDepth}
	if res != nil {
		vmOpts.Files = res.Files
	}
	if opts.traceVM {
		vmOpts.Trace = cmd.ErrOrStderr()
	}
	machine, err := vm.New(prog, reg, vmOpts)
	if err != nil {
		return err
	}

	start := time.Now()
	err = execute(cmd.OutOrStdout(), machine, entry, mainFn)
	elapsed := time.Since(start)
	if err != nil {
		return reportRuntime(cmd.ErrOrStderr(), res, err)
	}
	if out.timings {
		printTimings(cmd.ErrOrStderr(), res, namedDuration{name: "run", dur: elapsed})
	}
	return nil
}

// execute runs the entry initializer and the optional main function,
// printing every value they produce.
func execute(w io.Writer, m *vm.Machine, entry, mainFn string) error {
	v, err := m.RunModule(entry)
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Fprintln(w, vm.Format(v))
	}
	if mainFn == "" {
		return nil
	}
	v, err = m.Call(entry, mainFn)
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Fprintln(w, vm.Format(v))
	}
	return nil
}
