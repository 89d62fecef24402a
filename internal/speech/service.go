package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	"github.com/swetalanaparida/EchoTranslate/internal/retry"
)

// SynthesisError — синтез для языка не удался после всех попыток
type SynthesisError struct {
	Target   ports.LanguageTarget
	Attempts int
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize %s (%d attempts): %v", e.Target, e.Attempts, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

type Service struct {
	tts     TTSClient
	store   ports.ArtifactStore
	voice   VoiceConfig
	policy  retry.Policy
	log     *zap.Logger
	newName func() string
}

func NewService(tts TTSClient, store ports.ArtifactStore, voice VoiceConfig, policy retry.Policy, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		tts:     tts,
		store:   store,
		voice:   voice,
		policy:  policy,
		log:     log,
		newName: uuid.NewString,
	}
}

// Synthesize озвучивает text и сохраняет один артефакт с уникальным именем.
// Каждая попытка читает поток заново, недочитанные байты выбрасываются.
func (s *Service) Synthesize(ctx context.Context, target ports.LanguageTarget, text string) (ports.Artifact, error) {
	ext, contentType := formatInfo(s.voice.OutputFormat)
	name := s.newName() + "." + ext
	log := s.log.With(zap.String("target", string(target)), zap.String("artifact", name))

	var artifact ports.Artifact
	attempts := 0

	err := retry.Do(ctx, s.policy, log, func(ctx context.Context) error {
		attempts++

		audio, err := s.collect(ctx, text)
		if err != nil {
			return err
		}

		location, err := s.store.Save(ctx, name, contentType, audio)
		if err != nil {
			return fmt.Errorf("save artifact: %w", err)
		}

		artifact = ports.Artifact{
			Target:      target,
			Name:        name,
			Location:    location,
			ContentType: contentType,
			Audio:       audio,
		}
		return nil
	})
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			err = exhausted.Err
		}
		return ports.Artifact{}, &SynthesisError{Target: target, Attempts: attempts, Err: err}
	}

	log.Info("synthesized", zap.Int("bytes", len(artifact.Audio)), zap.Int("attempts", attempts))
	return artifact, nil
}

// collect дочитывает поток до io.EOF, пропуская пустые куски
func (s *Service) collect(ctx context.Context, text string) ([]byte, error) {
	stream, err := s.tts.Synthesize(ctx, text, s.voice)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var buf bytes.Buffer
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read audio stream: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}
		buf.Write(chunk)
	}
}

// formatInfo: "mp3_22050_32" -> ("mp3", "audio/mpeg")
func formatInfo(outputFormat string) (ext, contentType string) {
	codec, _, _ := strings.Cut(outputFormat, "_")
	switch codec {
	case "mp3", "":
		return "mp3", "audio/mpeg"
	case "pcm":
		return "pcm", "audio/pcm"
	case "ulaw":
		return "ulaw", "audio/basic"
	case "opus":
		return "opus", "audio/ogg"
	}
	return codec, "application/octet-stream"
}
