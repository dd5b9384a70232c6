package commands

import (
	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/internal/log"
)

// Version and BuildTime are stamped by the build; main copies them in.
var (
	Version   = "dev"
	BuildTime = ""
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "qzx",
	Short: "go-qzx - qudit ZX-calculus diagram rewriting",
	Long: `go-qzx compiles qudit Clifford circuits into ZX-diagrams and
rewrites them with the graph-like and affine normal form rules.

Commands:
  compile     Compile a circuit description into a diagram
  simplify    Reduce diagrams to normal form (single file or batch)
  optimize    Gate-level Clifford optimization of a circuit
  extract     Read a circuit back out of a circuit-layout diagram
  stats       Show circuit or diagram statistics
  init        Set up qzx configuration interactively
  doctor      Diagnose the configuration environment
  version     Print version information

Use "qzx [command] --help" for more information about a command.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
			log.Default().SetJSONOutput(true)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON lines")
}
