package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"vsharp/internal/buildpipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Compile modules into a bytecode artifact",
	Long:  "Compile a project described by vsharp.toml, a module directory or a single file into a .vsbc artifact.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "artifact path (default from vsharp.toml or next to the input)")
	buildCmd.Flags().String("entry", "", "module whose initializer the artifact runs")
	buildCmd.Flags().String("main", "", "function of the entry module invoked after the initializer")
	buildCmd.Flags().IntP("jobs", "j", 0, "parallel tasks per stage (0 = GOMAXPROCS)")
	buildCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func buildExecution(cmd *cobra.Command, args []string) (err error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	entry, err := cmd.Flags().GetString("entry")
	if err != nil {
		return err
	}
	mainFn, err := cmd.Flags().GetString("main")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	out, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}

	tgt, err := resolveTarget(args)
	if err != nil {
		return err
	}
	if output != "" {
		tgt.output = output
	}
	if entry != "" {
		tgt.entry = entry
	}
	if mainFn != "" {
		tgt.main = mainFn
	}
	if jobs > 0 {
		tgt.jobs = jobs
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	req := buildpipeline.BuildRequest{
		CompileRequest: tgt.compileRequest(out.maxDiagnostics),
		Output:         tgt.output,
		Entry:          tgt.entry,
		Main:           tgt.main,
	}
	var res buildpipeline.BuildResult
	var berr error
	if shouldUseTUI(mode, out.quiet) {
		res, berr = runBuildWithUI(cmd.Context(), "build "+filepath.Base(tgt.output), tgt.modules(), &req)
	} else {
		res, berr = buildpipeline.Build(cmd.Context(), &req)
	}
	if berr != nil {
		return reportCompile(cmd.ErrOrStderr(), res.CompileResult, berr, tgt.baseDir, out)
	}

	if !out.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "built %s (%d %s, %d functions)\n",
			displayPath(res.OutputPath, tgt.baseDir), len(res.Modules), plural(len(res.Modules), "module"), len(res.Program.Funcs))
	}
	if out.timings {
		printTimings(cmd.OutOrStdout(), res.CompileResult, namedDuration{name: "write", dur: res.Written})
	}
	return nil
}

// displayPath shortens path relative to base when it lies inside it.
func displayPath(path, base string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || filepath.IsAbs(rel) || len(rel) >= 2 && rel[:2] == ".." {
		return path
	}
	return rel
}
