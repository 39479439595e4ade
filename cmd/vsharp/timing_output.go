package main

import (
	"fmt"
	"io"
	"time"

	"vsharp/internal/buildpipeline"
)

// printTimings writes the per-stage table of res plus any extra steps the
// command ran after compiling.
func printTimings(w io.Writer, res *buildpipeline.CompileResult, extra ...namedDuration) {
	if res == nil || res.Timer == nil {
		return
	}
	fmt.Fprint(w, res.Timer.Summary())
	for _, e := range extra {
		fmt.Fprintf(w, "  %-12s %8.2f ms\n", e.name, toMillis(e.dur))
	}
}

type namedDuration struct {
	name string
	dur  time.Duration
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
