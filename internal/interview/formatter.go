package interview

import (
	"math/rand"
	"strings"
)

// Phrases holds the natural-language content the formatter works with. It is
// domain data, not logic: deployments can override any part of it from the
// configuration file to run interviews in another language.
type Phrases struct {
	// Openers are prepended to the first generated question when a stage
	// becomes active, keyed by stage id.
	Openers map[string]string `mapstructure:"openers"`
	// Transitions are standalone replies used when a stage completes and the
	// interview moves on, keyed by the new stage's id.
	Transitions map[string]string `mapstructure:"transitions"`

	LowAcknowledgements    []string `mapstructure:"low-acknowledgements"`
	MediumAcknowledgements []string `mapstructure:"medium-acknowledgements"`
	HighAcknowledgements   []string `mapstructure:"high-acknowledgements"`

	IntroFallback     string `mapstructure:"intro-fallback"`
	NewStageFallback  string `mapstructure:"new-stage-fallback"`
	ElaborationPrompt string `mapstructure:"elaboration-prompt"`
	GenericTransition string `mapstructure:"generic-transition"`
	Closing           string `mapstructure:"closing"`
}

// DefaultPhrases returns the built-in English phrase tables.
func DefaultPhrases() *Phrases {
	return &Phrases{
		Openers: map[string]string{
			"experience":  "Now let's talk a bit about your work experience.",
			"technical":   "Let's discuss your technical skills for a moment.",
			"behavioral":  "There are a few things I'm curious about regarding the way you work.",
			"company_fit": "Now let's talk about your expectations and career goals.",
			"questions":   "Finally, do you have any questions for me?",
		},
		Transitions: map[string]string{
			"experience":  "Got it, thank you. Could we talk a bit about your previous work experience?",
			"technical":   "Thanks. Now let's talk about your technical knowledge and skills.",
			"behavioral":  "Your experience is impressive. Could we talk about how you handle difficult situations?",
			"company_fit": "I see. Now, what are your career goals and your expectations of the company culture?",
			"questions":   "Great, thank you. Finally, is there anything you would like to ask me?",
		},
		LowAcknowledgements: []string{
			"I think we drifted a little off topic.",
			"I'd like to open this topic up a bit more.",
			"Maybe we could be a little more specific?",
			"Interesting, but I don't think I got quite what I was looking for.",
		},
		MediumAcknowledgements: []string{
			"I see.",
			"Interesting.",
			"Thank you.",
			"That's a good start.",
		},
		HighAcknowledgements: []string{
			"That's a great perspective.",
			"An interesting point of view.",
			"That's really valuable information.",
			"Great.",
		},
		IntroFallback:     "Could you start by telling me a little about yourself?",
		NewStageFallback:  "Could you share your thoughts on this topic?",
		ElaborationPrompt: "Could you give me a bit more detail?",
		GenericTransition: "Now let's move on to another topic.",
		Closing:           "Thank you for all this information. We can wrap up our conversation here. We will share the evaluation result with you soon.",
	}
}

// Picker selects an index in [0, n). Injectable so tests can pin the draw.
type Picker func(n int) int

// Formatter turns an engine decision plus evaluation metadata into a single
// bot utterance. It never mutates the session.
type Formatter struct {
	phrases *Phrases
	pick    Picker
}

func NewFormatter(phrases *Phrases, pick Picker) *Formatter {
	if phrases == nil {
		phrases = DefaultPhrases()
	}
	if pick == nil {
		pick = rand.Intn
	}
	return &Formatter{phrases: phrases, pick: pick}
}

// Format composes the bot reply for the current state of the conversation.
// When isNewStage is set, stage is the freshly activated stage.
func (f *Formatter) Format(session *Session, stage *Stage, isNewStage bool, eval *Evaluation) string {
	if session.Completed {
		return session.OverallFeedback
	}

	if isNewStage {
		return f.openStage(session, stage)
	}

	if eval != nil {
		if !eval.StageComplete && stage.Attempts < 3 {
			return f.acknowledge(eval)
		}

		// The stage is done. Either the interview just ran out of stages or
		// the conversation moves to the next one.
		if stage.ID == session.lastStage().ID {
			return f.phrases.Closing
		}
		next := session.Stages[session.CurrentStageIndex+1]
		if transition, ok := f.phrases.Transitions[next.ID]; ok {
			return transition
		}
		return f.phrases.GenericTransition
	}

	return f.phrases.ElaborationPrompt
}

func (f *Formatter) openStage(session *Session, stage *Stage) string {
	if stage.ID == "intro" {
		if len(stage.Questions) > 0 {
			return stage.Questions[0].Question
		}
		return f.phrases.IntroFallback
	}

	opener := f.phrases.Openers[stage.ID]

	question := f.phrases.NewStageFallback
	if len(stage.Questions) > 0 {
		question = stage.Questions[0].Question
	}

	return joinPhrases(opener, question)
}

func (f *Formatter) acknowledge(eval *Evaluation) string {
	var pool []string
	switch {
	case eval.SatisfactionScore < 40:
		pool = f.phrases.LowAcknowledgements
	case eval.SatisfactionScore < 60:
		pool = f.phrases.MediumAcknowledgements
	default:
		pool = f.phrases.HighAcknowledgements
	}

	if len(pool) == 0 {
		return joinPhrases(f.phrases.ElaborationPrompt, eval.NextQuestion)
	}

	return joinPhrases(pool[f.pick(len(pool))], eval.NextQuestion)
}

func joinPhrases(parts ...string) string {
	joined := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			joined = append(joined, part)
		}
	}
	return strings.Join(joined, " ")
}
