package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

var ErrInvalidTargets = errors.New("invalid target languages")

// TranscriptionError — провайдер распознавания вернул статус error.
// Перевод и синтез в этом случае не запускаются.
type TranscriptionError struct {
	Message string
}

func (e *TranscriptionError) Error() string {
	return "transcription failed: " + e.Message
}

// Output — всё, что вернул один прогон
type Output struct {
	Transcript string
	Results    []ports.TargetResult
}

type Orchestrator struct {
	stt     Transcriber
	tr      Translator
	tts     Synthesizer
	limit   int
	timeout time.Duration
	log     *zap.Logger
}

func NewOrchestrator(stt Transcriber, tr Translator, tts Synthesizer, limit int, timeout time.Duration, log *zap.Logger) *Orchestrator {
	if limit < 1 {
		limit = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		stt:     stt,
		tr:      tr,
		tts:     tts,
		limit:   limit,
		timeout: timeout,
		log:     log,
	}
}

// Run: распознать -> перевести на все языки -> озвучить каждый перевод.
// Всё или ничего: любая ошибка отменяет остальные вызовы, частичных
// результатов нет. Results выровнены по targets.
func (o *Orchestrator) Run(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (*Output, error) {
	ctx, cancel := o.withDeadline(ctx)
	defer cancel()

	transcript, err := o.transcribe(ctx, audioPath, targets)
	if err != nil {
		return nil, err
	}

	translations, err := o.tr.FanOut(ctx, transcript, targets)
	if err != nil {
		o.log.Warn("translation failed", zap.Error(err))
		return nil, err
	}

	results := make([]ports.TargetResult, len(translations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.limit)

	for i, tr := range translations {
		g.Go(func() error {
			art, err := o.tts.Synthesize(gctx, tr.Target, tr.Text)
			if err != nil {
				return err
			}
			results[i] = ports.TargetResult{Target: tr.Target, Text: tr.Text, Artifact: art}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.log.Warn("synthesis failed", zap.Error(err))
		return nil, err
	}

	o.log.Info("pipeline done", zap.Int("targets", len(results)))
	return &Output{Transcript: transcript, Results: results}, nil
}

// RunPartial — явная политика частичного успеха: ошибка распознавания всё
// ещё валит прогон, а ошибки по отдельным языкам лежат в TargetResult.Err.
// Язык, который не перевёлся, не озвучивается.
func (o *Orchestrator) RunPartial(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (*Output, error) {
	ctx, cancel := o.withDeadline(ctx)
	defer cancel()

	transcript, err := o.transcribe(ctx, audioPath, targets)
	if err != nil {
		return nil, err
	}

	results := o.tr.FanOutPartial(ctx, transcript, targets)

	var g errgroup.Group
	g.SetLimit(o.limit)

	for i := range results {
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			art, err := o.tts.Synthesize(ctx, results[i].Target, results[i].Text)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Artifact = art
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	o.log.Info("pipeline done", zap.Int("targets", len(results)), zap.Int("failed", failed))

	return &Output{Transcript: transcript, Results: results}, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (string, error) {
	if err := validateTargets(targets); err != nil {
		return "", err
	}

	res, err := o.stt.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if !res.OK() {
		o.log.Warn("transcription failed", zap.String("reason", res.ErrorMessage))
		return "", &TranscriptionError{Message: res.ErrorMessage}
	}
	return res.Text, nil
}

func (o *Orchestrator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

func validateTargets(targets []ports.LanguageTarget) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: empty list", ErrInvalidTargets)
	}
	seen := make(map[ports.LanguageTarget]bool, len(targets))
	for _, t := range targets {
		if t == "" {
			return fmt.Errorf("%w: empty code", ErrInvalidTargets)
		}
		if seen[t] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidTargets, t)
		}
		seen[t] = true
	}
	return nil
}
