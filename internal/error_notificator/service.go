package error_notificator

import (
	"context"
	"log"
)

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	if infra == nil {
		infra = Noop{}
	}
	return &Service{infra: infra}
}

// Notify не возвращает ошибку доставки наверх: алерт не должен ломать ответ пользователю
func (s *Service) Notify(ctx context.Context, err error, details string) error {
	if nerr := s.infra.Notify(ctx, err, details); nerr != nil {
		log.Printf("[error_notificator] notify fail: %v", nerr)
	}
	return nil
}
