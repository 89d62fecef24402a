package pipeline

import (
	"context"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (ports.TranscriptionResult, error)
}

type Translator interface {
	FanOut(ctx context.Context, text string, targets []ports.LanguageTarget) ([]ports.Translation, error)
	FanOutPartial(ctx context.Context, text string, targets []ports.LanguageTarget) []ports.TargetResult
}

type Synthesizer interface {
	Synthesize(ctx context.Context, target ports.LanguageTarget, text string) (ports.Artifact, error)
}
