package interview

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/promptomatic/promptomatic/internal/engine"
	"github.com/promptomatic/promptomatic/internal/types"
)

// stubStages scripts the three stage executors and records assemble calls.
type stubStages struct {
	analyzeFn   func() (*engine.IntentAnalysis, error)
	questionsFn func() ([]engine.Question, error)
	assembleFns []func() (*engine.AssembleResult, error)

	analyzeCalls  int
	questionCalls int
	assembleCalls []assembleCall

	// blocks Assemble until released, for in-flight tests
	assembleGate chan struct{}
}

type assembleCall struct {
	answers      map[string]string
	originalText string
}

func (s *stubStages) AnalyzeIntent(ctx context.Context, text string, lang types.Language, profile *types.TeacherProfile) (*engine.IntentAnalysis, error) {
	s.analyzeCalls++
	return s.analyzeFn()
}

func (s *stubStages) GenerateQuestions(ctx context.Context, analysis *engine.IntentAnalysis, lang types.Language, profile *types.TeacherProfile) ([]engine.Question, error) {
	s.questionCalls++
	return s.questionsFn()
}

func (s *stubStages) Assemble(ctx context.Context, analysis *engine.IntentAnalysis, answers map[string]string, originalText string, lang types.Language, profile *types.TeacherProfile) (*engine.AssembleResult, error) {
	if s.assembleGate != nil {
		<-s.assembleGate
	}
	copied := make(map[string]string, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	s.assembleCalls = append(s.assembleCalls, assembleCall{answers: copied, originalText: originalText})

	idx := len(s.assembleCalls) - 1
	if idx >= len(s.assembleFns) {
		return nil, errors.New("no scripted assemble result")
	}
	return s.assembleFns[idx]()
}

func intentWithMissing(fields ...string) *engine.IntentAnalysis {
	return &engine.IntentAnalysis{
		SourceType:    "from_scratch",
		MissingFields: fields,
		Summary:       "résumé",
	}
}

func promptResult(name string) *engine.AssembleResult {
	return &engine.AssembleResult{
		Kind: engine.KindPrompt,
		Prompt: &engine.AssembledPrompt{
			Name: name,
			Blocks: []engine.PromptBlock{
				{Technique: engine.TechniqueRole, Content: "Tu es professeur.", Order: 1},
			},
		},
	}
}

func askUserResult(fields ...string) *engine.AssembleResult {
	qs := make([]engine.Question, len(fields))
	for i, f := range fields {
		qs[i] = engine.Question{ID: f, Question: "?", Field: f}
	}
	return &engine.AssembleResult{Kind: engine.KindAskUser, Questions: qs}
}

func newTestFlow(s *stubStages) *Flow {
	return New(Config{Stages: s, Language: types.LanguageFrench})
}

func TestFlow_FastPath(t *testing.T) {
	// No missing fields: assemble runs immediately with an empty answer map
	// and the questions step is never entered.
	stub := &stubStages{
		analyzeFn:   func() (*engine.IntentAnalysis, error) { return intentWithMissing(), nil },
		assembleFns: []func() (*engine.AssembleResult, error){func() (*engine.AssembleResult, error) { return promptResult("Exercice B1"), nil }},
	}
	flow := newTestFlow(stub)

	text := "Je veux un exercice de grammaire pour des B1"
	if err := flow.SubmitText(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flow.Step() != StepDone {
		t.Fatalf("expected done, got %q", flow.Step())
	}
	if stub.questionCalls != 0 {
		t.Errorf("expected no question generation, got %d calls", stub.questionCalls)
	}
	if len(stub.assembleCalls) != 1 {
		t.Fatalf("expected 1 assemble call, got %d", len(stub.assembleCalls))
	}
	call := stub.assembleCalls[0]
	if len(call.answers) != 0 {
		t.Errorf("expected empty answer map, got %v", call.answers)
	}
	if call.originalText != text {
		t.Errorf("expected original text passed through, got %q", call.originalText)
	}
	if flow.Result() == nil || flow.Result().Name != "Exercice B1" {
		t.Errorf("unexpected result: %+v", flow.Result())
	}
}

func TestFlow_QuestionRound(t *testing.T) {
	stub := &stubStages{
		analyzeFn: func() (*engine.IntentAnalysis, error) { return intentWithMissing("topic", "audience"), nil },
		questionsFn: func() ([]engine.Question, error) {
			return []engine.Question{
				{ID: "q1", Question: "Quel sujet ?", Field: "topic"},
				{ID: "q2", Question: "Quel public ?", Field: "audience"},
			}, nil
		},
		assembleFns: []func() (*engine.AssembleResult, error){func() (*engine.AssembleResult, error) { return promptResult("Exercice"), nil }},
	}
	flow := newTestFlow(stub)

	text := "Je veux un exercice de grammaire"
	if err := flow.SubmitText(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Step() != StepQuestions {
		t.Fatalf("expected questions step, got %q", flow.Step())
	}

	// All questions must be answered before assembly.
	if err := flow.SubmitAnswers(context.Background()); err == nil {
		t.Fatal("expected error when answers are incomplete")
	}
	if flow.Step() != StepQuestions {
		t.Errorf("incomplete answers must not leave the questions step, got %q", flow.Step())
	}

	if err := flow.Answer("topic", "le passé composé"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := flow.Answer("audience", "adultes débutants"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := flow.SubmitAnswers(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flow.Step() != StepDone {
		t.Fatalf("expected done, got %q", flow.Step())
	}
	call := stub.assembleCalls[0]
	want := map[string]string{"topic": "le passé composé", "audience": "adultes débutants"}
	if !reflect.DeepEqual(call.answers, want) {
		t.Errorf("unexpected answers: %v", call.answers)
	}
	if call.originalText != text {
		t.Errorf("expected the first submitted text, got %q", call.originalText)
	}
}

func TestFlow_AskUserReentry(t *testing.T) {
	// Assembly first asks for more clarification, then succeeds: the
	// conversation ends in done with exactly two assemble calls.
	stub := &stubStages{
		analyzeFn: func() (*engine.IntentAnalysis, error) { return intentWithMissing(), nil },
		assembleFns: []func() (*engine.AssembleResult, error){
			func() (*engine.AssembleResult, error) { return askUserResult("topic"), nil },
			func() (*engine.AssembleResult, error) { return promptResult("Exercice final"), nil },
		},
	}
	flow := newTestFlow(stub)

	text := "Je veux un exercice de grammaire"
	if err := flow.SubmitText(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Step() != StepQuestions {
		t.Fatalf("expected re-entry into questions, got %q", flow.Step())
	}

	if err := flow.Answer("topic", "les articles"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := flow.SubmitAnswers(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flow.Step() != StepDone {
		t.Fatalf("expected done, got %q", flow.Step())
	}
	if len(stub.assembleCalls) != 2 {
		t.Fatalf("expected exactly 2 assemble calls, got %d", len(stub.assembleCalls))
	}
	if stub.assembleCalls[1].originalText != text {
		t.Errorf("second assembly must still receive the first text, got %q", stub.assembleCalls[1].originalText)
	}
	if flow.Result().Name != "Exercice final" {
		t.Errorf("unexpected result %q", flow.Result().Name)
	}
}

func TestFlow_ForceReanswer(t *testing.T) {
	// A field answered in a prior round is re-collected when a newer round
	// asks about it again.
	stub := &stubStages{
		analyzeFn: func() (*engine.IntentAnalysis, error) { return intentWithMissing("topic", "audience"), nil },
		questionsFn: func() ([]engine.Question, error) {
			return []engine.Question{
				{ID: "q1", Question: "Quel sujet ?", Field: "topic"},
				{ID: "q2", Question: "Quel public ?", Field: "audience"},
			}, nil
		},
		assembleFns: []func() (*engine.AssembleResult, error){
			func() (*engine.AssembleResult, error) { return askUserResult("topic"), nil },
			func() (*engine.AssembleResult, error) { return promptResult("ok"), nil },
		},
	}
	flow := newTestFlow(stub)

	if err := flow.SubmitText(context.Background(), "Je veux un exercice de grammaire"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flow.Answer("topic", "première réponse")
	flow.Answer("audience", "adultes")
	if err := flow.SubmitAnswers(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ask_user came back for "topic": its old answer must be gone, the
	// unrelated "audience" answer must survive.
	if flow.Step() != StepQuestions {
		t.Fatalf("expected questions step, got %q", flow.Step())
	}
	answers := flow.Answers()
	if _, ok := answers["topic"]; ok {
		t.Error("expected stale topic answer discarded")
	}
	if answers["audience"] != "adultes" {
		t.Errorf("expected audience answer kept, got %v", answers)
	}

	// Submitting without the fresh answer is rejected.
	if err := flow.SubmitAnswers(context.Background()); err == nil {
		t.Fatal("expected error without the re-collected answer")
	}

	flow.Answer("topic", "réponse fraîche")
	if err := flow.SubmitAnswers(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stub.assembleCalls[1].answers["topic"]; got != "réponse fraîche" {
		t.Errorf("expected the fresh answer, got %q", got)
	}
}

func TestFlow_StageErrorSurfacesVerbatim(t *testing.T) {
	stub := &stubStages{
		analyzeFn: func() (*engine.IntentAnalysis, error) {
			return nil, errors.New("The AI service is temporarily unavailable. Please try again.")
		},
	}
	flow := newTestFlow(stub)

	err := flow.SubmitText(context.Background(), "Je veux un exercice de grammaire")
	if err == nil {
		t.Fatal("expected error")
	}
	if flow.Step() != StepError {
		t.Fatalf("expected error step, got %q", flow.Step())
	}
	if flow.Err() != "The AI service is temporarily unavailable. Please try again." {
		t.Errorf("expected the executor's message intact, got %q", flow.Err())
	}

	// Reset re-enters from input.
	if err := flow.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if flow.Step() != StepInput || flow.Err() != "" || flow.OriginalText() != "" {
		t.Error("expected reset to clear all conversation state")
	}
}

func TestFlow_SingleFlight(t *testing.T) {
	gate := make(chan struct{})
	stub := &stubStages{
		analyzeFn:    func() (*engine.IntentAnalysis, error) { return intentWithMissing(), nil },
		assembleFns:  []func() (*engine.AssembleResult, error){func() (*engine.AssembleResult, error) { return promptResult("ok"), nil }},
		assembleGate: gate,
	}
	flow := newTestFlow(stub)

	done := make(chan error, 1)
	go func() {
		done <- flow.SubmitText(context.Background(), "Je veux un exercice de grammaire")
	}()

	// Wait until the turn is actually in flight (blocked inside Assemble).
	for flow.Step() != StepAssembling {
		time.Sleep(time.Millisecond)
	}

	if err := flow.SubmitText(context.Background(), "autre texte"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight for concurrent submit, got %v", err)
	}
	if err := flow.Reset(); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight for concurrent reset, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Step() != StepDone {
		t.Errorf("expected done, got %q", flow.Step())
	}
}

func TestFlow_StepGuards(t *testing.T) {
	flow := newTestFlow(&stubStages{})

	if err := flow.Answer("topic", "x"); err == nil {
		t.Error("expected error answering outside the questions step")
	}
	if err := flow.SubmitAnswers(context.Background()); err == nil {
		t.Error("expected error submitting answers from input")
	}
}

// compile-time: the engine satisfies Stages
var _ Stages = (*engine.Engine)(nil)
