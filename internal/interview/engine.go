package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spigell/ai-interviewer/internal/ai"
	"go.uber.org/zap"
)

const (
	// maxAttempts caps how many answers a single stage accepts before the
	// interview is forced to move on (the first answer plus two retries).
	maxAttempts = 3
	// historyWindow limits how many transcript turns accompany an evaluation
	// prompt as conversational context.
	historyWindow = 10
)

// Result is the outcome of a single engine operation, ready to be rendered by
// the gateway.
type Result struct {
	SessionID       string `json:"session_id"`
	Message         string `json:"message"`
	CurrentStage    *Stage `json:"current_stage"`
	IsCompleted     bool   `json:"is_completed"`
	OverallFeedback string `json:"overall_feedback,omitempty"`
}

// Engine drives interview sessions: it activates stages, evaluates candidate
// answers through the generator and decides when to advance or conclude.
type Engine struct {
	store     *Store
	generator ai.Generator
	formatter *Formatter
	defaults  []StageSpec
	logger    *zap.Logger
}

func NewEngine(store *Store, generator ai.Generator, formatter *Formatter, defaults []StageSpec, logger *zap.Logger) *Engine {
	if len(defaults) == 0 {
		defaults = DefaultStages()
	}
	if formatter == nil {
		formatter = NewFormatter(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:     store,
		generator: generator,
		formatter: formatter,
		defaults:  defaults,
		logger:    logger,
	}
}

// StartInterview creates a session, activates its first stage and returns the
// opening utterance. Custom stages replace the default curriculum when given.
func (e *Engine) StartInterview(ctx context.Context, position, candidateName string, custom []StageSpec) (*Result, error) {
	if strings.TrimSpace(position) == "" {
		return nil, fmt.Errorf("%w: position is required", ErrValidation)
	}
	if strings.TrimSpace(candidateName) == "" {
		return nil, fmt.Errorf("%w: candidate name is required", ErrValidation)
	}

	specs := e.defaults
	if len(custom) > 0 {
		specs = custom
	}

	session := &Session{
		ID:            uuid.NewString(),
		Position:      position,
		CandidateName: candidateName,
		Stages:        buildStages(specs),
	}

	first := session.CurrentStage()
	first.Status = StageInProgress
	if err := e.generateQuestions(ctx, session, first); err != nil {
		return nil, err
	}

	opening := e.formatter.Format(session, first, true, nil)
	session.appendMessage(opening, false)

	e.store.Create(session)

	e.logger.Info("interview started",
		zap.String("session_id", session.ID),
		zap.String("position", position),
		zap.Int("stages", len(session.Stages)),
	)

	return &Result{
		SessionID:    session.ID,
		Message:      opening,
		CurrentStage: cloneStage(first),
		IsCompleted:  false,
	}, nil
}

// SendMessage records a candidate answer, evaluates it and returns the bot
// reply. A generator failure aborts the request; by then the candidate turn
// may already be part of the transcript (at-least-once-recorded semantics).
func (e *Engine) SendMessage(ctx context.Context, sessionID, message string) (*Result, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Completed {
		return &Result{
			SessionID:       session.ID,
			Message:         session.OverallFeedback,
			CurrentStage:    cloneStage(session.CurrentStage()),
			IsCompleted:     true,
			OverallFeedback: session.OverallFeedback,
		}, nil
	}

	session.appendMessage(message, true)

	stage := session.CurrentStage()

	eval, err := e.evaluateAnswer(ctx, session, stage, message)
	if err != nil {
		return nil, err
	}

	if stage.SatisfactionScore == 0 {
		stage.SatisfactionScore = eval.SatisfactionScore
	} else {
		stage.SatisfactionScore = (stage.SatisfactionScore + eval.SatisfactionScore) / 2
	}
	stage.Attempts++

	isNewStage := false
	if eval.StageComplete || stage.Attempts >= maxAttempts {
		stage.Status = StageCompleted

		if session.CurrentStageIndex < len(session.Stages)-1 {
			session.CurrentStageIndex++
			next := session.CurrentStage()
			next.Status = StageInProgress
			if err := e.generateQuestions(ctx, session, next); err != nil {
				return nil, err
			}
			stage = next
			isNewStage = true

			e.logger.Info("stage advanced",
				zap.String("session_id", session.ID),
				zap.String("stage_id", stage.ID),
				zap.Int("stage_index", session.CurrentStageIndex),
			)
		} else {
			session.Completed = true
			feedback, err := e.generateFeedback(ctx, session)
			if err != nil {
				return nil, err
			}
			session.OverallFeedback = feedback

			e.logger.Info("interview completed",
				zap.String("session_id", session.ID),
			)
		}
	}

	var reply string
	if session.Completed {
		reply = session.OverallFeedback
	} else {
		reply = e.formatter.Format(session, stage, isNewStage, &eval)
	}
	session.appendMessage(reply, false)

	result := &Result{
		SessionID:    session.ID,
		Message:      reply,
		CurrentStage: cloneStage(stage),
		IsCompleted:  session.Completed,
	}
	if session.Completed {
		result.OverallFeedback = session.OverallFeedback
	}
	return result, nil
}

// GetSession returns a point-in-time copy of the session, safe to serialize
// while other requests keep mutating the original.
func (e *Engine) GetSession(sessionID string) (*Session, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	stages := make([]*Stage, len(session.Stages))
	for i, stage := range session.Stages {
		stages[i] = cloneStage(stage)
	}

	return &Session{
		ID:                session.ID,
		Position:          session.Position,
		CandidateName:     session.CandidateName,
		CurrentStageIndex: session.CurrentStageIndex,
		Stages:            stages,
		Completed:         session.Completed,
		OverallFeedback:   session.OverallFeedback,
		ChatHistory:       append([]ChatMessage(nil), session.ChatHistory...),
	}, nil
}

// PopNextMessage removes and returns the oldest transcript turn, for clients
// that poll instead of holding a push channel. Returns nil when the transcript
// is drained.
func (e *Engine) PopNextMessage(sessionID string) (*ChatMessage, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if len(session.ChatHistory) == 0 {
		return nil, nil
	}

	oldest := session.ChatHistory[0]
	session.ChatHistory = session.ChatHistory[1:]
	return &oldest, nil
}

func (e *Engine) generateQuestions(ctx context.Context, session *Session, stage *Stage) error {
	prompt := buildQuestionsPrompt(session.Position, stage, session.CandidateName)

	raw, err := e.generator.Generate(ctx, prompt, nil)
	if err != nil {
		return fmt.Errorf("generate questions for stage %q: %w", stage.ID, err)
	}

	stage.Questions = parseQuestions(raw, stage)

	e.logger.Debug("stage questions generated",
		zap.String("session_id", session.ID),
		zap.String("stage_id", stage.ID),
		zap.Int("count", len(stage.Questions)),
	)
	return nil
}

func (e *Engine) evaluateAnswer(ctx context.Context, session *Session, stage *Stage, message string) (Evaluation, error) {
	prompt := buildEvaluationPrompt(session, stage, message)

	raw, err := e.generator.Generate(ctx, prompt, recentTurns(session, historyWindow))
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate answer for stage %q: %w", stage.ID, err)
	}

	eval := parseEvaluation(raw)

	e.logger.Debug("answer evaluated",
		zap.String("session_id", session.ID),
		zap.String("stage_id", stage.ID),
		zap.Int("satisfaction_score", eval.SatisfactionScore),
		zap.Bool("stage_complete", eval.StageComplete),
	)
	return eval, nil
}

func (e *Engine) generateFeedback(ctx context.Context, session *Session) (string, error) {
	raw, err := e.generator.Generate(ctx, buildFeedbackPrompt(session), nil)
	if err != nil {
		return "", fmt.Errorf("generate overall feedback: %w", err)
	}
	// Free text, served verbatim.
	return raw, nil
}

// cloneStage detaches a stage from the session so the result can be
// serialized without holding the session lock.
func cloneStage(stage *Stage) *Stage {
	if stage == nil {
		return nil
	}
	copied := *stage
	copied.Questions = append([]Question(nil), stage.Questions...)
	return &copied
}

// recentTurns maps the tail of the transcript to generator history, oldest
// first. Candidate turns become the user role, bot turns the model role.
func recentTurns(session *Session, limit int) []ai.Turn {
	history := session.ChatHistory
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	turns := make([]ai.Turn, 0, len(history))
	for _, msg := range history {
		role := ai.RoleModel
		if msg.IsUser {
			role = ai.RoleUser
		}
		turns = append(turns, ai.Turn{Role: role, Text: msg.Content})
	}
	return turns
}
