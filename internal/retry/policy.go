package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Policy — сколько попыток и сколько ждать между ними.
// Delay получает номер только что упавшей попытки (с 1).
type Policy struct {
	MaxAttempts int
	Delay       func(attempt int) time.Duration
	OnRetry     func(attempt int, err error, delay time.Duration)
}

// Fixed — фиксированная пауза между попытками, без джиттера
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay:       func(int) time.Duration { return delay },
	}
}

// Exponential — base, 2*base, 4*base ... но не больше max
func Exponential(maxAttempts int, base, max time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay: func(attempt int) time.Duration {
			d := base
			for i := 1; i < attempt; i++ {
				d *= 2
				if d >= max {
					return max
				}
			}
			return d
		},
	}
}

// Once — одна попытка, без повторов
func Once() Policy {
	return Policy{MaxAttempts: 1}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Delay == nil {
		return 0
	}
	return p.Delay(attempt)
}

// ExhaustedError — все попытки исчерпаны, Err — ошибка последней попытки
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do вызывает fn до MaxAttempts раз. Пауза только между попытками,
// после последней не ждём. Отмена ctx прерывает ожидание.
func Do(ctx context.Context, p Policy, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}

	max := p.attempts()
	var lastErr error

	for attempt := 1; attempt <= max; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				return err
			}
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt-1, lastErr)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				log.Info("retry succeeded", zap.Int("attempt", attempt))
			}
			return nil
		}

		log.Warn("attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", max),
			zap.Error(lastErr),
		)

		if attempt == max {
			break
		}

		d := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, d)
		}
		if d <= 0 {
			continue
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, lastErr)
		case <-timer.C:
		}
	}

	return &ExhaustedError{Attempts: max, Err: lastErr}
}
