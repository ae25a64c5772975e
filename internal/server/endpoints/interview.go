package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptomatic/promptomatic/internal/api"
	"github.com/promptomatic/promptomatic/internal/engine"
	"github.com/promptomatic/promptomatic/internal/svcctx"
	"github.com/promptomatic/promptomatic/internal/types"
)

// AnalyzeRequest is the request body for intent analysis.
type AnalyzeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// AnalyzeResponse contains the structured intent.
type AnalyzeResponse struct {
	Analysis *engine.IntentAnalysis `json:"analysis"`
}

// QuestionsRequest is the request body for question generation.
type QuestionsRequest struct {
	Analysis *engine.IntentAnalysis `json:"analysis"`
	Language string                 `json:"language,omitempty"`
}

// QuestionsResponse contains clarifying questions for missing fields.
type QuestionsResponse struct {
	Questions []engine.Question `json:"questions"`
}

// AssembleRequest is the request body for prompt assembly.
type AssembleRequest struct {
	Analysis     *engine.IntentAnalysis `json:"analysis"`
	Answers      map[string]string      `json:"answers"`
	OriginalText string                 `json:"original_text"`
	Language     string                 `json:"language,omitempty"`
}

// RefineRequest is the request body for prompt refinement.
type RefineRequest struct {
	Blocks       []engine.PromptBlock `json:"blocks"`
	IssueType    string               `json:"issue_type"`
	Description  string               `json:"description,omitempty"`
	OutputSample string               `json:"output_sample,omitempty"`
	Language     string               `json:"language,omitempty"`
}

// RefineResponse contains the revised blocks and the change list.
type RefineResponse struct {
	Refined *engine.RefinedPrompt `json:"refined"`
}

// currentProfile fetches the teacher profile when it is ready for use.
// A missing or incomplete profile is not an error; stages run without it.
func currentProfile(r *http.Request) *types.TeacherProfile {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		return nil
	}
	p, err := store.GetProfile(r.Context())
	if err != nil || !p.Ready() {
		return nil
	}
	return p
}

// writeStageError maps stage failures onto HTTP statuses. Validation
// problems are the caller's fault; everything else is an upstream failure
// whose message is passed through verbatim.
func writeStageError(w http.ResponseWriter, err error) {
	if engine.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// AnalyzeEndpoint handles POST /api/interview/analyze.
type AnalyzeEndpoint struct{}

func (e *AnalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/interview/analyze", e.handler
}

func (e *AnalyzeEndpoint) RequiresInit() bool { return true }

func (e *AnalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eng := svcctx.EngineFrom(r.Context())
	if eng == nil {
		writeError(w, http.StatusInternalServerError, "engine not available")
		return
	}

	analysis, err := eng.AnalyzeIntent(r.Context(), req.Text, types.ParseLanguage(req.Language), currentProfile(r))
	if err != nil {
		writeStageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{Analysis: analysis})
}

func (e *AnalyzeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Analyze a free-text request into a structured intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AnalyzeResponse
			err := client.Post(cmd.Context(), "/api/interview/analyze", AnalyzeRequest{
				Text:     args[0],
				Language: language,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp.Analysis)
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "Content language (fr or en)")
	return cmd
}

// QuestionsEndpoint handles POST /api/interview/questions.
type QuestionsEndpoint struct{}

func (e *QuestionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/interview/questions", e.handler
}

func (e *QuestionsEndpoint) RequiresInit() bool { return true }

func (e *QuestionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req QuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eng := svcctx.EngineFrom(r.Context())
	if eng == nil {
		writeError(w, http.StatusInternalServerError, "engine not available")
		return
	}

	qs, err := eng.GenerateQuestions(r.Context(), req.Analysis, types.ParseLanguage(req.Language), currentProfile(r))
	if err != nil {
		writeStageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QuestionsResponse{Questions: qs})
}

func (e *QuestionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "questions <analysis-json>",
		Short: "Generate clarifying questions for an intent's missing fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var analysis engine.IntentAnalysis
			if err := json.Unmarshal([]byte(args[0]), &analysis); err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp QuestionsResponse
			err := client.Post(cmd.Context(), "/api/interview/questions", QuestionsRequest{
				Analysis: &analysis,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp.Questions)
		},
	}
}

// AssembleEndpoint handles POST /api/interview/assemble.
type AssembleEndpoint struct{}

func (e *AssembleEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/interview/assemble", e.handler
}

func (e *AssembleEndpoint) RequiresInit() bool { return true }

func (e *AssembleEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req AssembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eng := svcctx.EngineFrom(r.Context())
	if eng == nil {
		writeError(w, http.StatusInternalServerError, "engine not available")
		return
	}

	result, err := eng.Assemble(r.Context(), req.Analysis, req.Answers, req.OriginalText,
		types.ParseLanguage(req.Language), currentProfile(r))
	if err != nil {
		writeStageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (e *AssembleEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <request-json>",
		Short: "Assemble a prompt from an intent and collected answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req AssembleRequest
			if err := json.Unmarshal([]byte(args[0]), &req); err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp engine.AssembleResult
			if err := client.Post(cmd.Context(), "/api/interview/assemble", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RefineEndpoint handles POST /api/interview/refine.
type RefineEndpoint struct{}

func (e *RefineEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/interview/refine", e.handler
}

func (e *RefineEndpoint) RequiresInit() bool { return true }

func (e *RefineEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eng := svcctx.EngineFrom(r.Context())
	if eng == nil {
		writeError(w, http.StatusInternalServerError, "engine not available")
		return
	}

	refined, err := eng.Refine(r.Context(), req.Blocks, req.IssueType, req.Description,
		req.OutputSample, types.ParseLanguage(req.Language), currentProfile(r))
	if err != nil {
		writeStageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RefineResponse{Refined: refined})
}

func (e *RefineEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "refine <request-json>",
		Short: "Refine a prompt's blocks to address a reported issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req RefineRequest
			if err := json.Unmarshal([]byte(args[0]), &req); err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp RefineResponse
			if err := client.Post(cmd.Context(), "/api/interview/refine", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.Refined)
		},
	}
}
