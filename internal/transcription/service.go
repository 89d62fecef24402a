package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

var ErrEmptyAudio = errors.New("audio input is empty")

type Service struct {
	client Client
	log    *zap.Logger
}

func NewService(client Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// Transcribe — одна попытка, без повторов. Ошибку транспорта сворачиваем
// в Status=error, чтобы вызывающему было что проверять в одном месте.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (ports.TranscriptionResult, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return ports.TranscriptionResult{}, fmt.Errorf("audio input: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return ports.TranscriptionResult{}, ErrEmptyAudio
	}

	res, err := s.client.Transcribe(ctx, audioPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.TranscriptionResult{}, ctxErr
		}
		s.log.Warn("transcription request failed", zap.String("path", audioPath), zap.Error(err))
		return ports.TranscriptionResult{
			Status:       ports.TranscriptionError,
			ErrorMessage: err.Error(),
		}, nil
	}

	if !res.OK() {
		s.log.Warn("transcription rejected", zap.String("reason", res.ErrorMessage))
		return res, nil
	}

	s.log.Info("transcribed", zap.Int("chars", len(res.Text)))
	return res, nil
}
