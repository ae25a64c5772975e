package endpoints

import (
	"github.com/promptomatic/promptomatic/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Interview endpoints
		&AnalyzeEndpoint{},
		&QuestionsEndpoint{},
		&AssembleEndpoint{},
		&RefineEndpoint{},

		// Prompt library endpoints
		&CreatePromptEndpoint{},
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},

		// Profile endpoints
		&GetProfileEndpoint{},
		&UpdateProfileEndpoint{},

		// LLM call history endpoints
		&ListLLMCallsEndpoint{},
	}
}

// InterviewCommands groups interview-related commands under one subcommand.
func InterviewCommands() []api.Endpoint {
	return []api.Endpoint{
		&AnalyzeEndpoint{},
		&QuestionsEndpoint{},
		&AssembleEndpoint{},
		&RefineEndpoint{},
	}
}

// PromptCommands groups prompt-library commands under one subcommand.
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreatePromptEndpoint{},
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},
	}
}

// ProfileCommands groups profile commands under one subcommand.
func ProfileCommands() []api.Endpoint {
	return []api.Endpoint{
		&GetProfileEndpoint{},
		&UpdateProfileEndpoint{},
	}
}

// LLMCallCommands groups llmcall commands under one subcommand.
func LLMCallCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListLLMCallsEndpoint{},
	}
}
