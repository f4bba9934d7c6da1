package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/meshcut"
	"github.com/wippyai/meshcut/debug"
	"github.com/wippyai/meshcut/export"
	"github.com/wippyai/meshcut/mesh"
	"github.com/wippyai/meshcut/meshio"
	"github.com/wippyai/meshcut/registry"
	"github.com/wippyai/meshcut/triangulate"
)

func main() {
	var (
		srcFile     = flag.String("src", "", "Source mesh (OFF)")
		cutFile     = flag.String("cut", "", "Cut mesh (OFF), defaults to the source mesh")
		dispatch    = flag.String("flags", "", "Dispatch flags (vertex-map,face-map,...)")
		policy      = flag.String("policy", "all", "Triangulation policy: all or cut-boundary")
		workers     = flag.Int("workers", 1, "Face triangulation workers (0 = GOMAXPROCS)")
		outDir      = flag.String("out", "", "Write each component's triangulation as OFF into this directory")
		verbose     = flag.Bool("v", false, "Verbose logging")
		debugMsgs   = flag.Bool("debug", false, "Print debug messages from the context")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *srcFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: meshcut -src <mesh.off> [-cut <mesh.off>] [-flags f1,f2] [-out dir]")
		fmt.Fprintln(os.Stderr, "       meshcut -src <mesh.off> -i  (interactive mode)")
		os.Exit(1)
	}

	cfg := config{
		src:     *srcFile,
		cut:     *cutFile,
		workers: *workers,
		debug:   *debugMsgs,
	}
	if cfg.cut == "" {
		cfg.cut = cfg.src
	}

	var err error
	if cfg.dispatch, err = parseDispatchFlags(*dispatch); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.policy, err = parsePolicy(*policy); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		cfg.logger = log
		triangulate.SetLogger(log.Named("triangulate"))
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	logger   *zap.Logger
	src      string
	cut      string
	workers  int
	dispatch meshcut.DispatchFlags
	policy   triangulate.Policy
	debug    bool
}

// session is a loaded registry with one dispatched context.
type session struct {
	reg  *registry.Registry
	ctx  registry.ContextHandle
	rows []row
}

func (s *session) Close() {
	s.reg.ReleaseContext(s.ctx)
}

func load(cfg config, sink debug.Callback) (*session, error) {
	src, err := readMesh(cfg.src)
	if err != nil {
		return nil, err
	}
	cut, err := readMesh(cfg.cut)
	if err != nil {
		return nil, err
	}

	opts := registry.DefaultOptions()
	opts.Logger = cfg.logger
	opts.Triangulation.Policy = cfg.policy
	opts.Triangulation.Workers = cfg.workers
	reg := registry.New(opts)

	var flags meshcut.ContextFlags
	if cfg.debug {
		flags |= meshcut.FlagDebug
	}
	h, err := reg.CreateContext(flags)
	if err != nil {
		return nil, err
	}
	s := &session{reg: reg, ctx: h}

	if err := reg.Dispatch(context.Background(), h, cfg.dispatch, src, cut); err != nil {
		s.Close()
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	failures := 0
	if err := reg.SetDebugCallback(h, func(msg debug.Message, userData any) {
		if msg.Source == debug.SourceKernel {
			failures++
		}
		if sink != nil {
			sink(msg, userData)
		}
	}, nil); err != nil {
		s.Close()
		return nil, err
	}
	if !cfg.debug {
		// Failure counts are wanted even when messages are not printed.
		reg.SetDebugFilter(h, debug.SourceKernel, debug.TypeOther, debug.SeverityNotification, true)
	}

	if s.rows, err = collect(reg, h, func() int { return failures }); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func readMesh(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()
	m, err := meshio.ReadMesh(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func run(cfg config, outDir string) error {
	var sink debug.Callback
	if cfg.debug {
		sink = func(msg debug.Message, _ any) {
			fmt.Fprintf(os.Stderr, "[%s/%s/%s] %s\n", msg.Source, msg.Type, msg.Severity, msg.Text)
		}
	}
	s, err := load(cfg, sink)
	if err != nil {
		return err
	}
	defer s.Close()

	width := 0
	styled := term.IsTerminal(int(os.Stdout.Fd()))
	if styled {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	fmt.Println(renderReport(cfg, s.rows, styled, width))

	if outDir == "" {
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, r := range s.rows {
		path := filepath.Join(outDir, fmt.Sprintf("%02d-%s.off", i, r.kind))
		if err := writeTriangulation(s, r, path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func writeTriangulation(s *session, r row, path string) error {
	c, err := s.reg.Component(s.ctx, r.handle)
	if err != nil {
		return err
	}
	tri, err := readU32(s.reg, s.ctx, r.handle, export.FaceTriangulation)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return meshio.Write(f, meshio.FromTriangles(c.Arrays().Vertices, tri))
}

func parseDispatchFlags(s string) (meshcut.DispatchFlags, error) {
	names := map[string]meshcut.DispatchFlags{
		"vertex-float":             meshcut.DispatchVertexArrayFloat,
		"vertex-double":            meshcut.DispatchVertexArrayDouble,
		"require-through-cuts":     meshcut.DispatchRequireThroughCuts,
		"vertex-map":               meshcut.DispatchIncludeVertexMap,
		"face-map":                 meshcut.DispatchIncludeFaceMap,
		"enforce-general-position": meshcut.DispatchEnforceGeneralPosition,
		"filter-all":               meshcut.DispatchFilterAll,
	}
	var flags meshcut.DispatchFlags
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := names[name]
		if !ok {
			return 0, fmt.Errorf("unknown dispatch flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

func parsePolicy(s string) (triangulate.Policy, error) {
	for _, p := range []triangulate.Policy{triangulate.PolicyAllFaces, triangulate.PolicyCutBoundary} {
		if p.String() == s {
			return p, nil
		}
	}
	if s == "all" {
		return triangulate.PolicyAllFaces, nil
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}
