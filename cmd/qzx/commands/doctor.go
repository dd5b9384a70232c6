package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/internal/healthcheck"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the configuration environment",
	Long: `Checks the global and project config files, reports active
environment overrides, and prints the effective settings with the
source they come from.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor()
	},
}

func runDoctor() error {
	res := healthcheck.Check()

	printFileStatus(res.Global)
	printFileStatus(res.Project)

	if len(res.Overrides) > 0 {
		fmt.Println("Environment overrides:")
		for _, o := range res.Overrides {
			fmt.Printf("  %s=%s\n", o.Name, o.Value)
		}
	}

	if res.LoadError != "" {
		fmt.Printf("Effective config: FAILED (%s)\n", res.LoadError)
		return fmt.Errorf("configuration is not usable")
	}

	cfg := res.Effective
	fmt.Printf("Effective config (from %s):\n", res.EffectiveScope())
	fmt.Printf("  default_dimension: %d\n", cfg.DefaultDimension)
	fmt.Printf("  max_iterations: %d\n", cfg.MaxIterations)
	fmt.Printf("  output_format: %s\n", cfg.OutputFormat)
	fmt.Printf("  workers: %d\n", cfg.Workers)
	fmt.Printf("  verbose: %t\n", cfg.Verbose)

	if !res.Healthy() {
		return fmt.Errorf("one or more config files are broken")
	}
	fmt.Println("Everything looks good.")
	return nil
}

func printFileStatus(st healthcheck.FileStatus) {
	switch st.Status {
	case "ok":
		fmt.Printf("%s config: %s (ok)\n", st.Scope, st.Path)
	case "missing":
		fmt.Printf("%s config: %s (not present)\n", st.Scope, st.Path)
	default:
		fmt.Printf("%s config: %s (ERROR: %s)\n", st.Scope, st.Path, st.Error)
	}
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
