// Package interview implements the conversation state machine that drives a
// teacher from a free-text request to an assembled prompt: analyze, clarify
// (possibly repeatedly), assemble. All conversation state lives in the Flow;
// the stage executors stay stateless.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/promptomatic/promptomatic/internal/engine"
	"github.com/promptomatic/promptomatic/internal/types"
)

// Step is the user-visible state of a conversation.
type Step string

const (
	StepInput      Step = "input"
	StepAnalyzing  Step = "analyzing"
	StepQuestions  Step = "questions"
	StepAssembling Step = "assembling"
	StepDone       Step = "done"
	StepError      Step = "error"
)

// ErrTurnInFlight is returned when a new submission arrives while a turn is
// still pending. The flow never queues; callers decide whether to retry.
var ErrTurnInFlight = errors.New("a turn is already in flight for this conversation")

// Stages is the slice of the engine the flow drives. *engine.Engine
// satisfies it.
type Stages interface {
	AnalyzeIntent(ctx context.Context, text string, lang types.Language, profile *types.TeacherProfile) (*engine.IntentAnalysis, error)
	GenerateQuestions(ctx context.Context, analysis *engine.IntentAnalysis, lang types.Language, profile *types.TeacherProfile) ([]engine.Question, error)
	Assemble(ctx context.Context, analysis *engine.IntentAnalysis, answers map[string]string, originalText string, lang types.Language, profile *types.TeacherProfile) (*engine.AssembleResult, error)
}

// Config holds flow dependencies.
type Config struct {
	Stages   Stages
	Language types.Language
	Profile  *types.TeacherProfile
	Logger   *slog.Logger
}

// Flow is one conversation instance. It is single-flight: at most one turn
// is outstanding at a time, and a second submission is rejected with
// ErrTurnInFlight rather than queued.
type Flow struct {
	stages  Stages
	lang    types.Language
	profile *types.TeacherProfile
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight bool

	step         Step
	originalText string
	intent       *engine.IntentAnalysis
	questions    []engine.Question
	answers      map[string]string
	result       *engine.AssembledPrompt
	errMsg       string
}

// New creates a conversation flow in the input step.
func New(cfg Config) *Flow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		stages:  cfg.Stages,
		lang:    cfg.Language,
		profile: cfg.Profile,
		logger:  logger.With("component", "interview"),
		step:    StepInput,
		answers: map[string]string{},
	}
}

// SubmitText starts the conversation: analyze the request, then either
// assemble straight away (nothing missing) or enter the question round.
func (f *Flow) SubmitText(ctx context.Context, text string) error {
	if err := f.begin(StepInput); err != nil {
		return err
	}
	defer f.end()

	f.update(func() {
		f.originalText = text
		f.errMsg = ""
		f.step = StepAnalyzing
	})

	analysis, err := f.stages.AnalyzeIntent(ctx, text, f.lang, f.profile)
	if err != nil {
		return f.fail(err)
	}
	f.update(func() { f.intent = analysis })

	// Nothing missing: skip the question round entirely.
	if len(analysis.MissingFields) == 0 {
		f.update(func() { f.step = StepAssembling })
		res, err := f.stages.Assemble(ctx, analysis, map[string]string{}, text, f.lang, f.profile)
		if err != nil {
			return f.fail(err)
		}
		f.applyAssembleResult(res)
		return nil
	}

	qs, err := f.stages.GenerateQuestions(ctx, analysis, f.lang, f.profile)
	if err != nil {
		return f.fail(err)
	}
	f.update(func() {
		f.setQuestions(qs)
		f.step = StepQuestions
	})
	return nil
}

// Answer records the teacher's answer for one question's field. Multi-select
// answers are joined by the caller before this call.
func (f *Flow) Answer(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return ErrTurnInFlight
	}
	if f.step != StepQuestions {
		return fmt.Errorf("cannot answer questions from step %q", f.step)
	}
	f.answers[field] = value
	return nil
}

// SubmitAnswers runs assembly once every active question has an answer. The
// assembler receives the original text from the first submission, never an
// intermediate summary.
func (f *Flow) SubmitAnswers(ctx context.Context) error {
	if err := f.begin(StepQuestions); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	for _, q := range f.questions {
		if strings.TrimSpace(f.answers[q.Field]) == "" {
			f.mu.Unlock()
			return fmt.Errorf("question %q has no answer yet", q.Field)
		}
	}
	analysis := f.intent
	answers := make(map[string]string, len(f.answers))
	for k, v := range f.answers {
		answers[k] = v
	}
	text := f.originalText
	f.errMsg = ""
	f.step = StepAssembling
	f.mu.Unlock()

	res, err := f.stages.Assemble(ctx, analysis, answers, text, f.lang, f.profile)
	if err != nil {
		return f.fail(err)
	}
	f.applyAssembleResult(res)
	return nil
}

// Reset clears all conversation state and returns to the input step.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return ErrTurnInFlight
	}
	f.step = StepInput
	f.originalText = ""
	f.intent = nil
	f.questions = nil
	f.answers = map[string]string{}
	f.result = nil
	f.errMsg = ""
	return nil
}

// applyAssembleResult branches on the assembly outcome: a finished prompt
// ends the conversation; ask_user loops back into the question round.
func (f *Flow) applyAssembleResult(res *engine.AssembleResult) {
	f.update(func() {
		if res.Kind == engine.KindAskUser {
			f.setQuestions(res.Questions)
			f.step = StepQuestions
			return
		}
		f.result = res.Prompt
		f.step = StepDone
	})
}

// setQuestions installs a new active question set and forces re-answering:
// an answer given in a prior round is discarded when a newer round asks
// about the same field, so a stale answer tied to different context is
// never silently reused. Callers must hold mu.
func (f *Flow) setQuestions(qs []engine.Question) {
	for _, q := range qs {
		delete(f.answers, q.Field)
	}
	f.questions = qs
}

// begin claims the single turn slot, verifying the current step allows it.
func (f *Flow) begin(from Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return ErrTurnInFlight
	}
	if f.step != from {
		return fmt.Errorf("cannot start a turn from step %q", f.step)
	}
	f.inFlight = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}

// fail moves to the error step, keeping the executor's message intact.
func (f *Flow) fail(err error) error {
	f.logger.Warn("turn failed", "error", err)
	f.update(func() {
		f.errMsg = err.Error()
		f.step = StepError
	})
	return err
}

func (f *Flow) update(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// OriginalText returns the first submitted text.
func (f *Flow) OriginalText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.originalText
}

// Intent returns the conversation's intent analysis, nil before analyzing.
func (f *Flow) Intent() *engine.IntentAnalysis {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intent
}

// Questions returns the active question set.
func (f *Flow) Questions() []engine.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]engine.Question, len(f.questions))
	copy(out, f.questions)
	return out
}

// Answers returns a copy of the collected answers.
func (f *Flow) Answers() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return out
}

// Result returns the assembled prompt once the conversation is done.
func (f *Flow) Result() *engine.AssembledPrompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Err returns the message from the failing executor, empty outside the
// error step.
func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}
