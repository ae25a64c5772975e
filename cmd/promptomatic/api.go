package main

import (
	"github.com/spf13/cobra"

	"github.com/promptomatic/promptomatic/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Promptomatic server via HTTP.

These commands require a running server (promptomatic serve).
Use --server to specify a custom server URL.

Examples:
  promptomatic api health                   # Check server health
  promptomatic api prompts list             # List saved prompts
  promptomatic api interview analyze "..."  # Analyze a request`,
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Interview stage commands",
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt library commands",
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Teacher profile commands",
}

var llmcallsCmd = &cobra.Command{
	Use:   "llmcalls",
	Short: "LLM call history commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8787", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Interview stages as subcommand group
	for _, ep := range endpoints.InterviewCommands() {
		interviewCmd.AddCommand(ep.Command(getServerURL))
	}

	// Prompt library as subcommand group
	for _, ep := range endpoints.PromptCommands() {
		promptsCmd.AddCommand(ep.Command(getServerURL))
	}

	// Profile as subcommand group
	for _, ep := range endpoints.ProfileCommands() {
		profileCmd.AddCommand(ep.Command(getServerURL))
	}

	// LLM calls as subcommand group
	for _, ep := range endpoints.LLMCallCommands() {
		llmcallsCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(interviewCmd)
	apiCmd.AddCommand(promptsCmd)
	apiCmd.AddCommand(profileCmd)
	apiCmd.AddCommand(llmcallsCmd)
	rootCmd.AddCommand(apiCmd)
}
