package transcription

import (
	"context"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

// Client — удалённый speech-to-text.
// error — сбой транспорта или чтения файла; отказ провайдера приходит
// как Status=error с его диагностикой.
type Client interface {
	Transcribe(ctx context.Context, audioPath string) (ports.TranscriptionResult, error)
}
