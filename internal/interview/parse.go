package interview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Evaluation is the generator's judgment of a single candidate answer.
type Evaluation struct {
	SatisfactionScore int    `json:"satisfaction_score"`
	StageComplete     bool   `json:"stage_complete"`
	NextQuestion      string `json:"next_question"`
}

const defaultNextQuestion = "Could you give me a bit more detail on that?"

// extractJSON pulls the JSON payload out of free-form generator text. A
// ```json fence wins, then the first fence of any kind, then the whole text.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if _, rest, ok := strings.Cut(raw, "```json"); ok {
		if inner, _, closed := strings.Cut(rest, "```"); closed {
			return strings.TrimSpace(inner)
		}
		return strings.TrimSpace(rest)
	}

	if _, rest, ok := strings.Cut(raw, "```"); ok {
		if inner, _, closed := strings.Cut(rest, "```"); closed {
			return strings.TrimSpace(inner)
		}
		return strings.TrimSpace(rest)
	}

	return raw
}

// parseQuestions decodes a generated question list. Malformed output falls
// back to a single generic question for the stage; the interview never aborts
// on a parse failure.
func parseQuestions(raw string, stage *Stage) []Question {
	var questions []Question
	if err := json.Unmarshal([]byte(extractJSON(raw)), &questions); err == nil && len(questions) > 0 {
		return questions
	}

	return []Question{{
		Question:       fmt.Sprintf("Could you tell me a bit about your %s?", strings.ToLower(stage.Name)),
		Intent:         "General information gathering",
		ExpectedThemes: []string{"Experience", "Competency", "Motivation"},
	}}
}

// parseEvaluation decodes an answer evaluation, substituting a neutral default
// when the generator output is unparseable.
func parseEvaluation(raw string) Evaluation {
	var wire struct {
		SatisfactionScore float64 `json:"satisfaction_score"`
		StageComplete     bool    `json:"stage_complete"`
		NextQuestion      string  `json:"next_question"`
	}

	if err := json.Unmarshal([]byte(extractJSON(raw)), &wire); err != nil {
		return Evaluation{
			SatisfactionScore: 50,
			StageComplete:     false,
			NextQuestion:      defaultNextQuestion,
		}
	}

	score := int(wire.SatisfactionScore)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Evaluation{
		SatisfactionScore: score,
		StageComplete:     wire.StageComplete,
		NextQuestion:      strings.TrimSpace(wire.NextQuestion),
	}
}
