// Package buildpipeline orchestrates the compilation process.
//
// Stages run in order with a barrier between them: parse, check and infer
// run one task per module, forge finalizes the interface trie and
// synthesizes classes, codegen runs one task per function and link
// assembles the program. The first failing task cancels tasks that have
// not started yet; tasks already running finish and their results are
// dropped.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vsharp/internal/ast"
	"vsharp/internal/bytecode"
	"vsharp/internal/codegen"
	"vsharp/internal/diag"
	"vsharp/internal/forge"
	"vsharp/internal/host"
	"vsharp/internal/infer"
	"vsharp/internal/ir"
	"vsharp/internal/observ"
	"vsharp/internal/parser"
	"vsharp/internal/project"
	"vsharp/internal/sema"
	"vsharp/internal/source"
	"vsharp/internal/trace"
)

// ErrCompile wraps the first error of a failed compilation. The result's
// Bag holds one diagnostic per failed task.
var ErrCompile = errors.New("compilation failed")

// Source is one module to compile. Content nil means read Path from disk.
type Source struct {
	Sig     project.Signature
	Path    string
	Content []byte
}

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	Root           string   // scanned for modules when Sources is empty
	Sources        []Source // in-memory or explicit module list
	Registry       *host.Registry
	Stdout         io.Writer // console of the default registry
	Jobs           int       // 0 means GOMAXPROCS
	MaxDiagnostics int
	Progress       ProgressSink
}

// CompileResult captures the program and everything needed to report on it.
type CompileResult struct {
	Program  *bytecode.Program
	Registry *host.Registry
	Files    *source.FileSet
	Modules  []string
	Bag      *diag.Bag
	Timer    *observ.Timer
	Timings  Timings
}

type loaded struct {
	Source
	id source.FileID
}

type pipeline struct {
	req     *CompileRequest
	res     *CompileResult
	tracer  trace.Tracer
	parent  uint64
	builder *host.Builder
	ifaces  *forge.InterfaceForge
	classes *forge.ClassForge
}

type stageRun struct {
	stage Stage
	idx   int
	span  *trace.Span
}

// Compile runs every stage and returns the linked program.
func Compile(ctx context.Context, req *CompileRequest) (*CompileResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing compile request")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	reg := req.Registry
	if reg == nil {
		out := req.Stdout
		if out == nil {
			out = os.Stdout
		}
		var err error
		if reg, err = host.NewStdRegistry(out); err != nil {
			return nil, err
		}
	}
	builder := host.NewBuilder()
	ifaces := forge.NewInterfaceForge()
	defer ifaces.Finalize()
	p := &pipeline{
		req: req,
		res: &CompileResult{
			Registry: reg,
			Files:    source.NewFileSet(),
			Bag:      diag.NewBag(req.MaxDiagnostics),
			Timer:    observ.NewTimer(),
		},
		tracer:  trace.FromContext(ctx),
		builder: builder,
		ifaces:  ifaces,
		classes: forge.NewClassForge(ifaces, builder),
	}
	root := trace.Begin(p.tracer, trace.ScopeDriver, "compile", 0)
	p.parent = root.ID()
	err := p.run(ctx)
	if err != nil {
		root.End(err.Error())
		return p.res, err
	}
	root.WithExtra("modules", fmt.Sprint(len(p.res.Modules))).End("")
	return p.res, nil
}

func (p *pipeline) run(ctx context.Context) error {
	srcs, err := p.load()
	if err != nil {
		return err
	}
	n := len(srcs)

	asts := make([]*ast.Module, n)
	err = p.perModule(ctx, StageParse, func(i int) error {
		m, err := parser.ParseFile(p.res.Files, srcs[i].id, srcs[i].Sig)
		asts[i] = m
		return err
	})
	if err != nil {
		return err
	}

	// Initializer handles follow module order regardless of scheduling.
	for _, s := range srcs {
		p.builder.DefineModule(s.Sig)
	}
	mods := make([]*ir.Module, n)
	err = p.perModule(ctx, StageCheck, func(i int) error {
		m, err := sema.Check(asts[i], sema.Options{Registry: p.res.Registry, Builder: p.builder, Shapes: p.ifaces})
		mods[i] = m
		return err
	})
	if err != nil {
		return err
	}

	byName := make(map[string]*ir.Module, n)
	for _, m := range mods {
		byName[m.Sig.String()] = m
	}
	eng := infer.New(infer.Options{
		Registry: p.res.Registry,
		Modules:  byName,
		Shapes:   p.ifaces,
		Classes:  p.classes,
	})
	typed := make([]*ir.TypedModule, n)
	err = p.perModule(ctx, StageInfer, func(i int) error {
		tm, err := eng.InferModule(mods[i])
		typed[i] = tm
		return err
	})
	if err != nil {
		return err
	}

	st := p.begin(StageForge)
	p.ifaces.Finalize()
	err = p.classes.SynthesizeReserved()
	p.end(st, err, fmt.Sprintf("%d classes", len(p.builder.Classes())))
	if err != nil {
		return p.fail(err)
	}

	funcs, natives, err := p.codegen(ctx, typed)
	if err != nil {
		return err
	}

	st = p.begin(StageLink)
	prog, err := codegen.Link(p.builder, funcs, natives)
	p.end(st, err, "")
	if err != nil {
		return p.fail(err)
	}
	p.res.Program = prog
	return nil
}

// load reads every source into the file set, sorted by signature.
func (p *pipeline) load() ([]loaded, error) {
	srcs := p.req.Sources
	if len(srcs) == 0 {
		if p.req.Root == "" {
			return nil, fmt.Errorf("no modules to compile")
		}
		files, err := project.DiscoverModules(p.req.Root)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no %s modules under %s", project.SourceExt, p.req.Root)
		}
		for _, f := range files {
			srcs = append(srcs, Source{Sig: f.Sig, Path: f.Path})
		}
	}
	out := make([]loaded, 0, len(srcs))
	seen := make(map[string]string, len(srcs))
	for _, s := range srcs {
		name := s.Sig.String()
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("module %s is defined by both %s and %s", name, prev, s.Path)
		}
		l := loaded{Source: s}
		if s.Content != nil {
			path := s.Path
			if path == "" {
				path = strings.ReplaceAll(name, ".", "/") + project.SourceExt
			}
			l.Path = path
			l.id = p.res.Files.AddVirtual(path, s.Content)
		} else {
			id, err := p.res.Files.Load(s.Path)
			if err != nil {
				return nil, err
			}
			l.id = id
		}
		seen[name] = l.Path
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sig.String() < out[j].Sig.String() })
	p.res.Modules = make([]string, len(out))
	for i, l := range out {
		p.res.Modules[i] = l.Sig.String()
	}
	return out, nil
}

// perModule runs task once per module under the job limit.
func (p *pipeline) perModule(ctx context.Context, stage Stage, task func(i int) error) error {
	st := p.begin(stage)
	names := p.res.Modules
	errs := make([]error, len(names))
	for _, name := range names {
		p.emit(Event{Module: name, Stage: stage, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs(len(names)))
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(p.tracer, trace.ScopeModule, "module:"+name, st.span.ID())
			p.emit(Event{Module: name, Stage: stage, Status: StatusWorking})
			start := time.Now()
			err := task(i)
			elapsed := time.Since(start)
			if err != nil {
				if de, ok := diag.AsError(err); ok && de.Module == "" {
					de.Module = name
				}
				errs[i] = err
				span.End(err.Error())
				p.emit(Event{Module: name, Stage: stage, Status: StatusError, Err: err, Elapsed: elapsed})
				return err
			}
			span.End("")
			p.emit(Event{Module: name, Stage: stage, Status: StatusDone, Elapsed: elapsed})
			return nil
		})
	}
	err := g.Wait()
	p.end(st, err, fmt.Sprintf("%d modules", len(names)))
	if err == nil {
		return nil
	}
	for _, e := range errs {
		if e != nil {
			p.res.Bag.AddError(e)
		}
	}
	p.res.Bag.Sort()
	return fmt.Errorf("%w: %w", ErrCompile, err)
}

func (p *pipeline) codegen(ctx context.Context, typed []*ir.TypedModule) ([]*bytecode.Function, *codegen.Natives, error) {
	st := p.begin(StageCodegen)
	gen := codegen.New(p.classes, nil)
	var all []*ir.TypedFunction
	for _, tm := range typed {
		all = append(all, tm.Init)
		all = append(all, tm.Functions...)
	}
	funcs := make([]*bytecode.Function, p.builder.FuncCount())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs(len(all)))
	for _, tf := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(p.tracer, trace.ScopeNode, "func:"+tf.Source.Qualified(), st.span.ID())
			fn, err := gen.Function(tf)
			if err != nil {
				span.End(err.Error())
				return err
			}
			span.End("")
			funcs[tf.Source.Handle] = fn
			return nil
		})
	}
	err := g.Wait()
	p.end(st, err, fmt.Sprintf("%d functions", len(all)))
	if err != nil {
		return nil, nil, p.fail(err)
	}
	return funcs, gen.Natives(), nil
}

func (p *pipeline) fail(err error) error {
	p.res.Bag.AddError(err)
	return fmt.Errorf("%w: %w", ErrCompile, err)
}

func (p *pipeline) jobs(tasks int) int {
	jobs := p.req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, tasks))
}

func (p *pipeline) begin(stage Stage) stageRun {
	p.emit(Event{Stage: stage, Status: StatusWorking})
	return stageRun{
		stage: stage,
		idx:   p.res.Timer.Begin(string(stage)),
		span:  trace.Begin(p.tracer, trace.ScopePass, string(stage), p.parent),
	}
}

func (p *pipeline) end(st stageRun, err error, note string) {
	dur := p.res.Timer.End(st.idx, note)
	p.res.Timings.Set(st.stage, dur)
	if err != nil {
		st.span.End(err.Error())
		p.emit(Event{Stage: st.stage, Status: StatusError, Err: err, Elapsed: dur})
		return
	}
	st.span.End(note)
	p.emit(Event{Stage: st.stage, Status: StatusDone, Elapsed: dur})
}

func (p *pipeline) emit(ev Event) {
	if p.req.Progress != nil {
		p.req.Progress.OnEvent(ev)
	}
}
