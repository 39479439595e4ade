package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vsharp/internal/buildpipeline"
	"vsharp/internal/diagfmt"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Type-check modules without writing an artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE:  checkExecution,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostic format (pretty|json)")
}

func checkExecution(cmd *cobra.Command, args []string) (err error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	out, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	tgt, err := resolveTarget(args)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	req := tgt.compileRequest(out.maxDiagnostics)
	res, cerr := buildpipeline.Compile(cmd.Context(), &req)
	if format == "json" {
		if res == nil {
			return cerr
		}
		opts := diagfmt.JSONOpts{
			IncludePositions: true,
			BaseDir:          tgt.baseDir,
			Max:              out.maxDiagnostics,
			IncludeNotes:     true,
		}
		if jerr := diagfmt.JSON(cmd.OutOrStdout(), res.Bag, res.Files, opts); jerr != nil {
			return jerr
		}
		if cerr != nil {
			if res.Bag.Len() > 0 {
				return errReported
			}
			return cerr
		}
		return nil
	}
	if cerr != nil {
		return reportCompile(cmd.ErrOrStderr(), res, cerr, tgt.baseDir, out)
	}
	if !out.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d %s checked\n", len(res.Modules), plural(len(res.Modules), "module"))
	}
	if out.timings {
		printTimings(cmd.OutOrStdout(), res)
	}
	return nil
}
