package translation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	"github.com/swetalanaparida/EchoTranslate/internal/retry"
)

// TranslationError — перевод для одного языка не удался
type TranslationError struct {
	Target ports.LanguageTarget
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate to %s: %v", e.Target, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

type Service struct {
	translator Translator
	source     string
	policy     retry.Policy
	limit      int
	log        *zap.Logger
}

func NewService(t Translator, source string, policy retry.Policy, limit int, log *zap.Logger) *Service {
	if limit < 1 {
		limit = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		translator: t,
		source:     source,
		policy:     policy,
		limit:      limit,
		log:        log,
	}
}

// FanOut переводит text на все targets. Порядок результата совпадает с
// порядком targets. Первая ошибка отменяет остальные вызовы, частичных
// результатов нет.
func (s *Service) FanOut(ctx context.Context, text string, targets []ports.LanguageTarget) ([]ports.Translation, error) {
	out := make([]ports.Translation, len(targets))
	if isBlank(text) {
		for i, target := range targets {
			out[i] = ports.Translation{Target: target}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, target := range targets {
		g.Go(func() error {
			translated, err := s.translateOne(gctx, text, target)
			if err != nil {
				return &TranslationError{Target: target, Err: err}
			}
			out[i] = ports.Translation{Target: target, Text: translated}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FanOutPartial — как FanOut, но ошибки остаются в TargetResult.Err
// и не мешают остальным языкам.
func (s *Service) FanOutPartial(ctx context.Context, text string, targets []ports.LanguageTarget) []ports.TargetResult {
	out := make([]ports.TargetResult, len(targets))
	if isBlank(text) {
		for i, target := range targets {
			out[i] = ports.TargetResult{Target: target}
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.limit)

	for i, target := range targets {
		g.Go(func() error {
			translated, err := s.translateOne(ctx, text, target)
			out[i] = ports.TargetResult{Target: target, Text: translated}
			if err != nil {
				out[i].Err = &TranslationError{Target: target, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Service) translateOne(ctx context.Context, text string, target ports.LanguageTarget) (string, error) {
	log := s.log.With(zap.String("target", string(target)))

	var translated string
	err := retry.Do(ctx, s.policy, log, func(ctx context.Context) error {
		var err error
		translated, err = s.translator.Translate(ctx, text, s.source, string(target))
		return err
	})
	if err != nil {
		return "", err
	}

	log.Debug("translated", zap.Int("chars", len(translated)))
	return translated, nil
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
