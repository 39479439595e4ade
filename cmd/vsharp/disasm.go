package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vsharp/internal/buildpipeline"
	"vsharp/internal/bytecode"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] [path]",
	Short: "Print the bytecode of compiled modules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  disasmExecution,
}

func init() {
	disasmCmd.Flags().String("artifact", "", "disassemble a built .vsbc artifact")
	disasmCmd.Flags().String("format", "text", "output format (text|yaml)")
}

func disasmExecution(cmd *cobra.Command, args []string) (err error) {
	artifact, err := cmd.Flags().GetString("artifact")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unsupported format %q (must be text or yaml)", format)
	}
	if artifact != "" && len(args) > 0 {
		return errors.New("--artifact and a source path are mutually exclusive")
	}
	out, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}

	var prog *bytecode.Program
	if artifact != "" {
		if prog, err = bytecode.ReadFile(artifact); err != nil {
			return err
		}
	} else {
		tgt, terr := resolveTarget(args)
		if terr != nil {
			return terr
		}
		cleanup, terr := setupTracing(cmd)
		if terr != nil {
			return terr
		}
		defer func() { cleanup(err != nil) }()
		req := tgt.compileRequest(out.maxDiagnostics)
		res, cerr := buildpipeline.Compile(cmd.Context(), &req)
		if cerr != nil {
			return reportCompile(cmd.ErrOrStderr(), res, cerr, tgt.baseDir, out)
		}
		prog = res.Program
	}

	if format == "yaml" {
		return bytecode.DisasmYAML(cmd.OutOrStdout(), prog)
	}
	return bytecode.Disasm(cmd.OutOrStdout(), prog)
}
