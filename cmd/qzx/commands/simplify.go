package commands

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/internal/config"
	"github.com/qzx-dev/go-qzx/internal/log"
	"github.com/qzx-dev/go-qzx/pkg/cache"
	"github.com/qzx-dev/go-qzx/pkg/simplify"
	"github.com/qzx-dev/go-qzx/pkg/store"
)

// simplifyCmd represents the simplify command
var simplifyCmd = &cobra.Command{
	Use:   "simplify <path> [path...]",
	Short: "Reduce diagrams to normal form",
	Long: `Rewrites each diagram to the affine-with-phases normal form:
recolor to graph-like, then eliminate internal spiders by pivoting and
local complementation. YAML inputs are compiled first. Directory
arguments expand to the circuit and diagram files inside them
(respecting .qzxignore), and batches run on a worker pool.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		graphLike, _ := cmd.Flags().GetBool("graph-like")
		workers, _ := cmd.Flags().GetInt("workers")
		return runSimplify(args, output, graphLike, workers)
	},
}

type simplifyResult struct {
	path   string
	output string
	before int
	after  int
	cached bool
	report *simplify.Report
	err    error
}

func runSimplify(paths []string, output string, graphLike bool, workers int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if workers <= 0 {
		workers = cfg.Workers
	}
	paths, err = expandPaths(paths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no circuit or diagram files found")
	}
	if len(paths) > 1 && output != "" {
		return fmt.Errorf("--output is only valid with a single input file")
	}

	logger := log.Default()
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	// Batches often repeat diagrams (the same circuit compiled into
	// several files), so reduced results are cached by signature.
	reduced := cache.NewDiagramCache(256)
	mode := "full:"
	if graphLike {
		mode = "graph-like:"
	}

	run := func(path string) simplifyResult {
		res := simplifyResult{path: path}
		g, err := loadDiagram(path, cfg.DefaultDimension)
		if err != nil {
			res.err = err
			return res
		}
		res.before = g.NumVertices()

		key := mode + g.Signature()
		if hit, ok := reduced.Get(key); ok {
			g = hit
			res.cached = true
		} else {
			engine := simplify.NewEngine()
			engine.MaxIterations = cfg.MaxIterations
			engine.SetLogger(logger)
			if graphLike {
				res.report, res.err = engine.ToGraphLike(g)
			} else {
				res.report, res.err = engine.FullReduce(g)
			}
			if res.err != nil {
				res.err = fmt.Errorf("%s: %w", path, res.err)
				return res
			}
			reduced.Set(key, g)
		}
		res.after = g.NumVertices()

		res.output = output
		if res.output == "" {
			res.output = replaceExt(path, ".reduced", DiagramExt)
		}
		if err := store.SaveFile(res.output, g); err != nil {
			res.err = err
		}
		return res
	}

	results := make([]simplifyResult, len(paths))
	if workers > len(paths) {
		workers = len(paths)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = run(paths[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var firstErr error
	for _, res := range results {
		if res.err != nil {
			fmt.Printf("FAIL %s: %v\n", res.path, res.err)
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if res.cached {
			fmt.Printf("%s: %d -> %d vertices (cached) -> %s\n",
				res.path, res.before, res.after, res.output)
			continue
		}
		fmt.Printf("%s: %d -> %d vertices in %d iterations -> %s\n",
			res.path, res.before, res.after, res.report.Iterations, res.output)
		printApplied(res.report)
		for _, diag := range res.report.Diagnostics {
			logger.Warn("rewrite diagnostic", "file", res.path, "detail", diag)
		}
	}
	return firstErr
}

func printApplied(rep *simplify.Report) {
	if len(rep.Applied) == 0 {
		return
	}
	names := make([]string, 0, len(rep.Applied))
	for name := range rep.Applied {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, rep.Applied[name])
	}
}

func init() {
	simplifyCmd.Flags().StringP("output", "o", "", "Output diagram file (single input only)")
	simplifyCmd.Flags().Bool("graph-like", false, "Stop after rewriting to graph-like form")
	simplifyCmd.Flags().IntP("workers", "w", 0, "Worker pool size for batch runs (default: from config)")
	RootCmd.AddCommand(simplifyCmd)
}
