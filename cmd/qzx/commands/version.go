package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qzx version %s\n", Version)
		if BuildTime != "" {
			fmt.Printf("built at %s\n", BuildTime)
		}
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
