package interview

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "json fence surrounded by prose",
			input:  "Here you go:\n```json\n{\"a\": 1}\n```\nHope it helps!",
			expect: `{"a": 1}`,
		},
		{
			name:   "unlabeled fence",
			input:  "```\n[1, 2, 3]\n```",
			expect: `[1, 2, 3]`,
		},
		{
			name:   "json fence wins over earlier plain fence content",
			input:  "```json\n{\"picked\": true}\n```",
			expect: `{"picked": true}`,
		},
		{
			name:   "no fence takes whole text",
			input:  "  {\"raw\": true}  ",
			expect: `{"raw": true}`,
		},
		{
			name:   "unterminated fence takes the rest",
			input:  "```json\n{\"open\": 1}",
			expect: `{"open": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tt.input); got != tt.expect {
				t.Fatalf("extractJSON(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseQuestions(t *testing.T) {
	t.Parallel()

	stage := &Stage{ID: "technical", Name: "Technical Skills"}

	raw := "```json\n[{\"question\": \"What was your hardest bug?\", \"intent\": \"probe debugging skill\", \"expected_themes\": [\"Debugging\", \"Persistence\"]}]\n```"
	questions := parseQuestions(raw, stage)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].Question != "What was your hardest bug?" {
		t.Fatalf("unexpected question: %q", questions[0].Question)
	}
	if len(questions[0].ExpectedThemes) != 2 {
		t.Fatalf("unexpected themes: %v", questions[0].ExpectedThemes)
	}
}

func TestParseQuestionsFallsBackOnGarbage(t *testing.T) {
	t.Parallel()

	stage := &Stage{ID: "technical", Name: "Technical Skills"}

	for _, raw := range []string{"not json at all", "```json\n{broken\n```", ""} {
		questions := parseQuestions(raw, stage)
		if len(questions) != 1 {
			t.Fatalf("expected fallback question for %q, got %d", raw, len(questions))
		}
		themes := questions[0].ExpectedThemes
		if len(themes) != 3 || themes[0] != "Experience" || themes[1] != "Competency" || themes[2] != "Motivation" {
			t.Fatalf("unexpected fallback themes: %v", themes)
		}
	}
}

func TestParseEvaluation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect Evaluation
	}{
		{
			name:   "valid fenced object",
			input:  "```json\n{\"satisfaction_score\": 85, \"stage_complete\": true, \"next_question\": \"\"}\n```",
			expect: Evaluation{SatisfactionScore: 85, StageComplete: true},
		},
		{
			name:   "fractional score is truncated",
			input:  `{"satisfaction_score": 72.9, "stage_complete": false, "next_question": "Go on?"}`,
			expect: Evaluation{SatisfactionScore: 72, StageComplete: false, NextQuestion: "Go on?"},
		},
		{
			name:   "score above range is clamped",
			input:  `{"satisfaction_score": 150, "stage_complete": true}`,
			expect: Evaluation{SatisfactionScore: 100, StageComplete: true},
		},
		{
			name:   "garbage yields neutral default",
			input:  "the model rambled instead of answering",
			expect: Evaluation{SatisfactionScore: 50, StageComplete: false, NextQuestion: defaultNextQuestion},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseEvaluation(tt.input)
			if got != tt.expect {
				t.Fatalf("parseEvaluation(%q) = %+v, want %+v", tt.input, got, tt.expect)
			}
		})
	}
}
