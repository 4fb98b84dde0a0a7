// Package tts converts bot utterances to audio. Synthesis is best-effort:
// callers degrade to text-only delivery when it fails.
package tts

import "context"

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
