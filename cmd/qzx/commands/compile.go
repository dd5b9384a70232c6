package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/internal/config"
	"github.com/qzx-dev/go-qzx/pkg/store"
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile <circuit.yaml>",
	Short: "Compile a circuit description into a ZX-diagram",
	Long: `Reads a YAML circuit description, compiles it into a ZX-diagram
with boundary vertices on every wire, and stores the diagram in msgpack
form.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return runCompile(args[0], output)
	},
}

func runCompile(path, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c, err := loadCircuit(path, cfg.DefaultDimension)
	if err != nil {
		return err
	}
	g, err := c.ToDiagram()
	if err != nil {
		return fmt.Errorf("compiling %s: %w", path, err)
	}

	if output == "" {
		output = replaceExt(path, "", DiagramExt)
	}
	if err := store.SaveFile(output, g); err != nil {
		return err
	}

	fmt.Printf("Compiled %s: %d gates -> %d vertices, %d edges (dim %d)\n",
		path, len(c.Gates), g.NumVertices(), g.NumEdges(), g.Dim)
	fmt.Printf("Diagram written to %s\n", output)
	return nil
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "Output diagram file (default: input with "+DiagramExt+")")
	RootCmd.AddCommand(compileCmd)
}
