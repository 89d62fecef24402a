package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "🎙 Пришли голосовое или аудио, и я верну перевод голосом на языки: %s"

// runBotLoop — главный цикл получения апдейтов
func (app *BotApp) runBotLoop(ctx context.Context, bot *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := bot.GetUpdatesChan(u)
	log.Printf("[bot_loop] started username=@%s", bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Printf("[bot_loop] stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go app.handleMessage(ctx, bot, update.Message)
		}
	}
}

func (app *BotApp) handleMessage(ctx context.Context, bot Bot, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch {
	case msg.Voice != nil:
		app.handleVoice(ctx, bot, chatID, msg.Voice.FileID, ".ogg")
	case msg.Audio != nil:
		app.handleVoice(ctx, bot, chatID, msg.Audio.FileID, audioExt(msg.Audio))
	case msg.IsCommand() && msg.Command() == "targets":
		bot.Send(tgbotapi.NewMessage(chatID, "Языки: "+app.targetList()))
	default:
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(helpText, app.targetList())))
	}
}

func (app *BotApp) targetList() string {
	codes := make([]string, len(app.Targets))
	for i, t := range app.Targets {
		codes[i] = string(t)
	}
	return strings.Join(codes, ", ")
}

func audioExt(a *tgbotapi.Audio) string {
	if i := strings.LastIndex(a.FileName, "."); i >= 0 {
		return strings.ToLower(a.FileName[i:])
	}
	switch a.MimeType {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	}
	return ".ogg"
}
