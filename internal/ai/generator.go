package ai

import (
	"context"
	"fmt"
)

// Role identifies the author of a conversation turn sent to the generator.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is a single prior exchange supplied to the generator as context.
type Turn struct {
	Role Role
	Text string
}

// Generator produces free-form text for a prompt, optionally conditioned on
// prior conversation turns.
type Generator interface {
	Generate(ctx context.Context, prompt string, history []Turn) (string, error)
}

// GeneratorError describes a failed generation call. Status carries the
// upstream HTTP code when one is known, zero otherwise.
type GeneratorError struct {
	Status int
	Detail string
}

func (e *GeneratorError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generator call failed (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("generator call failed: %s", e.Detail)
}
