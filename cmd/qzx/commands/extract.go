package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/pkg/extract"
	"github.com/qzx-dev/go-qzx/pkg/store"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <diagram" + DiagramExt + ">",
	Short: "Read a circuit back out of a circuit-layout diagram",
	Long: `Walks a stored diagram wire by wire and rebuilds its gate list.
Only diagrams that still carry the compiler's wire layout are
extractable; diagrams reshaped by simplification generally are not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return runExtract(args[0], output)
	},
}

func runExtract(path, output string) error {
	g, err := store.LoadFile(path)
	if err != nil {
		return err
	}
	c, err := extract.Circuit(g)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}
	if err := writeCircuit(output, c); err != nil {
		return err
	}
	if output != "" && output != "-" {
		fmt.Printf("Extracted %d gates on %d qudits -> %s\n", len(c.Gates), c.Qudits, output)
	}
	return nil
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "Output circuit file (default: stdout)")
	RootCmd.AddCommand(extractCmd)
}
