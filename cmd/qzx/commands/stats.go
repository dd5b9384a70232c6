package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qzx-dev/go-qzx/internal/config"
	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/store"
)

// StatsOutput represents the output of the stats command
type StatsOutput struct {
	File       string         `json:"file" yaml:"file"`
	Kind       string         `json:"kind" yaml:"kind"`
	Dim        int            `json:"dim" yaml:"dim"`
	Qudits     int            `json:"qudits,omitempty" yaml:"qudits,omitempty"`
	Gates      map[string]int `json:"gates,omitempty" yaml:"gates,omitempty"`
	TotalGates int            `json:"total_gates,omitempty" yaml:"total_gates,omitempty"`
	Vertices   int            `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Edges      int            `json:"edges,omitempty" yaml:"edges,omitempty"`
	ZSpiders   int            `json:"z_spiders,omitempty" yaml:"z_spiders,omitempty"`
	XSpiders   int            `json:"x_spiders,omitempty" yaml:"x_spiders,omitempty"`
	Boundaries int            `json:"boundaries,omitempty" yaml:"boundaries,omitempty"`
	Depth      int            `json:"depth,omitempty" yaml:"depth,omitempty"`
	Scalar     string         `json:"scalar,omitempty" yaml:"scalar,omitempty"`
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Show circuit or diagram statistics",
	Long: `Prints size statistics: gate counts per kind for a YAML circuit,
vertex and edge counts for a stored diagram. The output format follows
the configuration unless overridden with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runStats(args[0], jsonOutput)
	},
}

func runStats(path string, jsonOutput bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	format := cfg.OutputFormat
	if jsonOutput {
		format = config.FormatJSON
	}

	out := StatsOutput{File: path}
	if isCircuitFile(path) {
		c, err := loadCircuit(path, cfg.DefaultDimension)
		if err != nil {
			return err
		}
		out.Kind = "circuit"
		out.Dim = c.Dim
		out.Qudits = c.Qudits
		out.TotalGates = len(c.Gates)
		out.Gates = make(map[string]int)
		for _, g := range c.Gates {
			out.Gates[g.Kind.String()]++
		}
	} else {
		g, err := store.LoadFile(path)
		if err != nil {
			return err
		}
		out.Kind = "diagram"
		out.Dim = g.Dim
		out.Qudits = len(g.Inputs())
		out.Vertices = g.NumVertices()
		out.Edges = g.NumEdges()
		for _, v := range g.Vertices() {
			switch g.Type(v) {
			case diagram.ZSpider:
				out.ZSpiders++
			case diagram.XSpider:
				out.XSpiders++
			case diagram.Boundary:
				out.Boundaries++
			}
		}
		out.Depth = g.Depth()
		out.Scalar = g.Scalar.String()
	}

	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case config.FormatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(out)
	default:
		printStatsText(out)
	}
	return nil
}

func printStatsText(out StatsOutput) {
	fmt.Printf("File: %s\n", out.File)
	fmt.Printf("Kind: %s\n", out.Kind)
	fmt.Printf("Dimension: %d\n", out.Dim)
	if out.Qudits > 0 {
		fmt.Printf("Qudits: %d\n", out.Qudits)
	}
	if out.Kind == "circuit" {
		fmt.Printf("Gates: %d\n", out.TotalGates)
		names := make([]string, 0, len(out.Gates))
		for name := range out.Gates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %d\n", name, out.Gates[name])
		}
		return
	}
	fmt.Printf("Vertices: %d (Z: %d, X: %d, boundary: %d)\n",
		out.Vertices, out.ZSpiders, out.XSpiders, out.Boundaries)
	fmt.Printf("Edges: %d\n", out.Edges)
	if out.Depth >= 0 {
		fmt.Printf("Depth: %d\n", out.Depth)
	}
	if out.Scalar != "" {
		fmt.Printf("Scalar: %s\n", out.Scalar)
	}
}

func init() {
	statsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(statsCmd)
}
