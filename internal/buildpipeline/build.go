package buildpipeline

import (
	"context"
	"fmt"
	"time"

	"vsharp/internal/bytecode"
)

// BuildRequest compiles and writes an artifact.
type BuildRequest struct {
	CompileRequest
	Output string
	// Entry and Main, when set, must name a module and one of its
	// functions in the compiled program.
	Entry string
	Main  string
}

type BuildResult struct {
	*CompileResult
	OutputPath string
	Written    time.Duration
}

// Build compiles req and writes the program to req.Output.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if req.Output == "" {
		return result, fmt.Errorf("missing output path")
	}
	res, err := Compile(ctx, &req.CompileRequest)
	result.CompileResult = res
	if err != nil {
		return result, err
	}
	if req.Entry != "" {
		if err := ValidateEntry(res.Program, req.Entry, req.Main); err != nil {
			return result, err
		}
	}
	start := time.Now()
	if err := bytecode.WriteFile(req.Output, res.Program); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", req.Output, err)
	}
	result.OutputPath = req.Output
	result.Written = time.Since(start)
	return result, nil
}
