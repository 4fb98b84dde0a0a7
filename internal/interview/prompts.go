package interview

import (
	"fmt"
	"strings"

	_ "embed"
)

//go:embed prompts/questions.md
var questionsTemplate string

//go:embed prompts/evaluation.md
var evaluationTemplate string

//go:embed prompts/feedback.md
var feedbackTemplate string

func buildQuestionsPrompt(position string, stage *Stage, candidateName string) string {
	prompt := strings.ReplaceAll(questionsTemplate, "{{POSITION}}", position)
	prompt = strings.ReplaceAll(prompt, "{{STAGE_NAME}}", stage.Name)
	prompt = strings.ReplaceAll(prompt, "{{STAGE_DESCRIPTION}}", stage.Description)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_NAME}}", candidateName)
	return prompt
}

func buildEvaluationPrompt(session *Session, stage *Stage, answer string) string {
	themes := make([]string, 0)
	for _, q := range stage.Questions {
		themes = append(themes, q.ExpectedThemes...)
	}

	prompt := strings.ReplaceAll(evaluationTemplate, "{{POSITION}}", session.Position)
	prompt = strings.ReplaceAll(prompt, "{{STAGE_NAME}}", stage.Name)
	prompt = strings.ReplaceAll(prompt, "{{STAGE_DESCRIPTION}}", stage.Description)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_NAME}}", session.CandidateName)
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
	prompt = strings.ReplaceAll(prompt, "{{EXPECTED_THEMES}}", strings.Join(themes, " / "))
	return prompt
}

func buildFeedbackPrompt(session *Session) string {
	summaries := make([]string, 0, len(session.Stages))
	for _, stage := range session.Stages {
		summaries = append(summaries, fmt.Sprintf("- %s: Score %d/100", stage.Name, stage.SatisfactionScore))
	}

	prompt := strings.ReplaceAll(feedbackTemplate, "{{POSITION}}", session.Position)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_NAME}}", session.CandidateName)
	prompt = strings.ReplaceAll(prompt, "{{STAGE_SCORES}}", strings.Join(summaries, "\n"))
	return prompt
}
