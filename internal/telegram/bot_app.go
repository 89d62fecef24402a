package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/swetalanaparida/EchoTranslate/internal/error_notificator"
	"github.com/swetalanaparida/EchoTranslate/internal/pipeline"
	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Runner interface {
	Run(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (*pipeline.Output, error)
	RunPartial(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (*pipeline.Output, error)
}

// Bot — то, что нужно обработчикам от *tgbotapi.BotAPI
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type BotApp struct {
	Pipeline    Runner
	Targets     []ports.LanguageTarget
	Partial     bool
	ErrorNotify error_notificator.Notificator

	httpClient *http.Client
}

func NewBotApp(pipeline Runner, targets []ports.LanguageTarget, partial bool, notify error_notificator.Notificator) *BotApp {
	if notify == nil {
		notify = error_notificator.Noop{}
	}
	return &BotApp{
		Pipeline:    pipeline,
		Targets:     targets,
		Partial:     partial,
		ErrorNotify: notify,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// InitBot поднимает бота и запускает цикл апдейтов в фоне.
func (app *BotApp) InitBot(ctx context.Context, token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	log.Printf("[bot_app] ready: @%s", bot.Self.UserName)

	go app.runBotLoop(ctx, bot)
	return bot, nil
}
