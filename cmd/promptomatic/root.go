package main

import (
	"github.com/spf13/cobra"

	"github.com/promptomatic/promptomatic/internal/api"
	"github.com/promptomatic/promptomatic/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "promptomatic",
	Short: "Guided prompt builder for language teachers",
	Long: `Promptomatic turns a teacher's rough request into a structured,
reusable LLM prompt through a short guided interview.

The interview includes:
  - Intent analysis of the free-text request
  - Clarifying questions for missing details
  - Assembly into annotated prompt blocks
  - Refinement of saved prompts that misbehave`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptomatic/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "promptomatic home directory (default: ~/.promptomatic)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
