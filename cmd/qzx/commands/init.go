package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/qzx-dev/go-qzx/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize qzx configuration interactively",
	Long: `Guides you through setting up qzx configuration step by step.
Creates a config file with the default qudit dimension, rewrite limits
and output settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	dimension := strconv.Itoa(cfg.DefaultDimension)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default qudit dimension").
				Description("The dimension assumed when a circuit file does not declare one (odd prime)").
				Options(
					huh.NewOption("3", "3"),
					huh.NewOption("5", "5"),
					huh.NewOption("7", "7"),
					huh.NewOption("11", "11"),
					huh.NewOption("13", "13"),
				).
				Value(&dimension),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.DefaultDimension, _ = strconv.Atoi(dimension)

	iterations := strconv.Itoa(cfg.MaxIterations)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Rewrite iteration bound").
				Description("Upper bound on simplification rounds before a run is declared non-terminating").
				Placeholder(iterations).
				Value(&iterations).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive integer")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.MaxIterations, _ = strconv.Atoi(iterations)

	outputFormat := string(cfg.OutputFormat)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Description("How commands render their results").
				Options(
					huh.NewOption("Text", string(config.FormatText)),
					huh.NewOption("JSON", string(config.FormatJSON)),
					huh.NewOption("YAML", string(config.FormatYAML)),
				).
				Value(&outputFormat),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.OutputFormat = config.OutputFormat(outputFormat)

	workers := strconv.Itoa(cfg.Workers)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Batch workers").
				Description("Parallel workers for batch simplification").
				Placeholder(workers).
				Value(&workers).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive integer")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.Workers, _ = strconv.Atoi(workers)

	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Verbose logging").
				Description("Log every rewrite the engines apply?").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Verbose),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.qzx/config.yaml)", "global"),
					huh.NewOption("Project (./.qzx/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectPath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Default dimension: %d\n", cfg.DefaultDimension)
	fmt.Printf("Max iterations: %d\n", cfg.MaxIterations)
	fmt.Printf("Output format: %s\n", cfg.OutputFormat)
	fmt.Printf("Workers: %d\n", cfg.Workers)
	fmt.Printf("Verbose: %t\n", cfg.Verbose)
	fmt.Println("=============================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
