package interview

import (
	"strings"
	"testing"
)

func fixedPicker(index int) Picker {
	return func(int) int { return index }
}

func twoStageSession() *Session {
	return &Session{
		ID: "s1",
		Stages: []*Stage{
			{ID: "intro", Name: "Introduction", Status: StageInProgress},
			{ID: "technical", Name: "Technical Skills", Status: StageNotStarted},
		},
	}
}

func TestFormatCompletedSessionReturnsFeedback(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, fixedPicker(0))
	session := twoStageSession()
	session.Completed = true
	session.OverallFeedback = "Strong candidate overall."

	got := f.Format(session, session.CurrentStage(), false, nil)
	if got != "Strong candidate overall." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestFormatNewIntroStage(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, fixedPicker(0))
	session := twoStageSession()

	stage := session.Stages[0]
	stage.Questions = []Question{{Question: "Tell me about yourself."}}
	if got := f.Format(session, stage, true, nil); got != "Tell me about yourself." {
		t.Fatalf("expected the first question verbatim, got %q", got)
	}

	stage.Questions = nil
	if got := f.Format(session, stage, true, nil); got != DefaultPhrases().IntroFallback {
		t.Fatalf("expected intro fallback, got %q", got)
	}
}

func TestFormatNewStagePrependsOpener(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, fixedPicker(0))
	session := twoStageSession()
	session.CurrentStageIndex = 1
	stage := session.Stages[1]
	stage.Questions = []Question{{Question: "Which language do you enjoy most?"}}

	got := f.Format(session, stage, true, nil)
	opener := DefaultPhrases().Openers["technical"]
	if got != opener+" Which language do you enjoy most?" {
		t.Fatalf("unexpected reply: %q", got)
	}

	// Unknown stage id has no opener; the question stands alone.
	stage.ID = "made_up"
	if got := f.Format(session, stage, true, nil); got != "Which language do you enjoy most?" {
		t.Fatalf("unexpected reply for unknown id: %q", got)
	}

	// No generated questions falls back to a generic prompt.
	stage.ID = "technical"
	stage.Questions = nil
	if got := f.Format(session, stage, true, nil); got != opener+" "+DefaultPhrases().NewStageFallback {
		t.Fatalf("unexpected fallback reply: %q", got)
	}
}

func TestFormatAcknowledgementPools(t *testing.T) {
	t.Parallel()

	phrases := DefaultPhrases()
	tests := []struct {
		name  string
		score int
		pool  []string
	}{
		{name: "low band", score: 20, pool: phrases.LowAcknowledgements},
		{name: "medium band", score: 45, pool: phrases.MediumAcknowledgements},
		{name: "band boundary 40 is medium", score: 40, pool: phrases.MediumAcknowledgements},
		{name: "high band", score: 60, pool: phrases.HighAcknowledgements},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := twoStageSession()
			stage := session.Stages[0]
			stage.Attempts = 1
			eval := &Evaluation{SatisfactionScore: tt.score, NextQuestion: "And then?"}

			// Every index must pick a member of the expected pool.
			for i := range tt.pool {
				f := NewFormatter(nil, fixedPicker(i))
				got := f.Format(session, stage, false, eval)

				if !strings.HasSuffix(got, " And then?") {
					t.Fatalf("reply does not carry the next question: %q", got)
				}
				prefix := strings.TrimSuffix(got, " And then?")
				found := false
				for _, member := range tt.pool {
					if prefix == member {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("reply prefix %q is not a pool member", prefix)
				}
			}
		})
	}
}

func TestFormatStageCompletionTransition(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, fixedPicker(0))
	session := twoStageSession()
	stage := session.Stages[0]
	stage.Attempts = 1
	eval := &Evaluation{SatisfactionScore: 90, StageComplete: true}

	got := f.Format(session, stage, false, eval)
	if got != DefaultPhrases().Transitions["technical"] {
		t.Fatalf("expected transition for the next stage, got %q", got)
	}
}

func TestFormatLastStageCompletionCloses(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, fixedPicker(0))
	session := twoStageSession()
	session.CurrentStageIndex = 1
	stage := session.Stages[1]
	stage.Attempts = 3
	eval := &Evaluation{SatisfactionScore: 55, StageComplete: false}

	got := f.Format(session, stage, false, eval)
	if got != DefaultPhrases().Closing {
		t.Fatalf("expected closing statement, got %q", got)
	}
}

func TestFormatWithoutEvaluationAsksForDetail(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil, fixedPicker(0))
	session := twoStageSession()

	got := f.Format(session, session.Stages[0], false, nil)
	if got != DefaultPhrases().ElaborationPrompt {
		t.Fatalf("unexpected default reply: %q", got)
	}
}
