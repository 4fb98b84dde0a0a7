// Package interview implements the interview state machine: per-stage question
// generation, answer evaluation, advancement decisions and transcript keeping.
package interview

import (
	"sync"
	"time"
)

// StageStatus tracks the lifecycle of a single interview stage. Transitions
// are monotonic: not_started -> in_progress -> completed.
type StageStatus string

const (
	StageNotStarted StageStatus = "not_started"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// Question is one generated question for a stage, with the generator's stated
// intent and the themes a good answer is expected to touch.
type Question struct {
	Question       string   `json:"question"`
	Intent         string   `json:"intent"`
	ExpectedThemes []string `json:"expected_themes"`
}

// Stage is one topical phase of the interview.
type Stage struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      StageStatus `json:"status"`
	Attempts    int         `json:"attempts"`
	Questions   []Question  `json:"questions"`
	// SatisfactionScore is a decaying running average of per-turn evaluation
	// scores, 0-100. Zero means the stage has not been scored yet.
	SatisfactionScore int `json:"satisfaction_score"`
}

// StageSpec describes a stage to be created, either from the default
// curriculum or from a caller-supplied custom list.
type StageSpec struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
}

// ChatMessage is one transcript entry. IsUser marks candidate turns, the rest
// belong to the interviewer bot.
type ChatMessage struct {
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the aggregate root of one interview. All mutation goes through
// the Engine, which holds mu for the duration of each operation.
type Session struct {
	mu sync.Mutex

	ID                string        `json:"id"`
	Position          string        `json:"position"`
	CandidateName     string        `json:"candidate_name"`
	CurrentStageIndex int           `json:"current_stage_index"`
	Stages            []*Stage      `json:"stages"`
	Completed         bool          `json:"completed"`
	OverallFeedback   string        `json:"overall_feedback"`
	ChatHistory       []ChatMessage `json:"chat_history"`
}

// CurrentStage returns the stage the cursor points at.
func (s *Session) CurrentStage() *Stage {
	return s.Stages[s.CurrentStageIndex]
}

func (s *Session) lastStage() *Stage {
	return s.Stages[len(s.Stages)-1]
}

func (s *Session) appendMessage(content string, isUser bool) {
	s.ChatHistory = append(s.ChatHistory, ChatMessage{
		Content:   content,
		IsUser:    isUser,
		Timestamp: time.Now().UTC(),
	})
}

// DefaultStages returns the built-in six-stage curriculum. Callers get a fresh
// copy; specs are shared between sessions only by value.
func DefaultStages() []StageSpec {
	return []StageSpec{
		{ID: "intro", Name: "Introduction", Description: "Getting to know the candidate and collecting basic background"},
		{ID: "experience", Name: "Work Experience", Description: "The candidate's previous roles and projects"},
		{ID: "technical", Name: "Technical Skills", Description: "The candidate's technical knowledge and abilities"},
		{ID: "behavioral", Name: "Behavioral Questions", Description: "Problem solving, teamwork, handling pressure"},
		{ID: "company_fit", Name: "Company Fit", Description: "Alignment with the company culture and the position"},
		{ID: "questions", Name: "Candidate Questions", Description: "The candidate's questions about the company and the role"},
	}
}

func buildStages(specs []StageSpec) []*Stage {
	stages := make([]*Stage, 0, len(specs))
	for _, spec := range specs {
		stages = append(stages, &Stage{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Status:      StageNotStarted,
		})
	}
	return stages
}
