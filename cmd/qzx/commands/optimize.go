package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/internal/config"
	"github.com/qzx-dev/go-qzx/internal/log"
	"github.com/qzx-dev/go-qzx/pkg/optimizer"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize <circuit.yaml>",
	Short: "Gate-level Clifford optimization of a circuit",
	Long: `Rewrites the gate list in place: combines repeated gates, removes
identities, and pushes Paulis, Hadamard pairs, S gates and SWAPs to the
right. Strategies:
  simple   combining, identity removal and the push-right rules
  single   simple plus the single-qudit Euler decompositions
  full     single plus CX-pair fusion and multiplier pushing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		strategy, _ := cmd.Flags().GetString("strategy")
		return runOptimize(args[0], output, strategy)
	},
}

func runOptimize(path, output, strategy string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c, err := loadCircuit(path, cfg.DefaultDimension)
	if err != nil {
		return err
	}
	before := len(c.Gates)

	engine := optimizer.NewEngine()
	engine.MaxIterations = cfg.MaxIterations
	logger := log.Default()
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	engine.SetLogger(logger)

	var rep *optimizer.Report
	switch strategy {
	case "simple":
		rep, err = engine.Simple(c)
	case "single":
		rep, err = engine.SingleQudit(c)
	case "full":
		rep, err = engine.Full(c)
	default:
		return fmt.Errorf("unknown strategy: %s (use 'simple', 'single' or 'full')", strategy)
	}
	if err != nil {
		return fmt.Errorf("optimizing %s: %w", path, err)
	}

	if err := writeCircuit(output, c); err != nil {
		return err
	}
	fmt.Printf("Optimized %s: %d -> %d gates, %d rewrites\n", path, before, len(c.Gates), rep.Total())
	return nil
}

func init() {
	optimizeCmd.Flags().StringP("output", "o", "", "Output circuit file (default: stdout)")
	optimizeCmd.Flags().StringP("strategy", "s", "simple", "Optimization strategy (simple, single, full)")
	RootCmd.AddCommand(optimizeCmd)
}
