package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/swetalanaparida/EchoTranslate/internal/pipeline"
	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxCaptionLen = 1024

func (app *BotApp) handleVoice(ctx context.Context, bot Bot, chatID int64, fileID, ext string) {
	log.Printf("[voice] start chatID=%d fileID=%s", chatID, fileID)

	url, err := bot.GetFileDirectURL(fileID)
	if err != nil {
		log.Printf("[voice] get file fail chatID=%d err=%v", chatID, err)
		bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось получить голосовое."))
		return
	}

	path, err := app.download(ctx, url, ext)
	if err != nil {
		log.Printf("[voice] download fail chatID=%d err=%v", chatID, err)
		bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при загрузке голосового."))
		return
	}
	defer os.Remove(path)

	run := app.Pipeline.Run
	if app.Partial {
		run = app.Pipeline.RunPartial
	}

	out, err := run(ctx, path, app.Targets)
	if err != nil {
		log.Printf("[voice] pipeline fail chatID=%d err=%v", chatID, err)

		var trErr *pipeline.TranscriptionError
		if errors.As(err, &trErr) {
			bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось распознать голос: "+trErr.Message))
			return
		}

		bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при переводе. Попробуй ещё раз позже."))
		_ = app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("chatID=%d fileID=%s", chatID, fileID))
		return
	}

	log.Printf("[voice] transcribed: %q", out.Transcript)

	for _, res := range out.Results {
		app.sendResult(ctx, bot, chatID, res)
	}

	log.Printf("[voice] done chatID=%d results=%d", chatID, len(out.Results))
}

func (app *BotApp) sendResult(ctx context.Context, bot Bot, chatID int64, res ports.TargetResult) {
	if res.Err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("⚠️ %s: перевод не удался", res.Target)))
		_ = app.ErrorNotify.Notify(ctx, res.Err, fmt.Sprintf("chatID=%d target=%s", chatID, res.Target))
		return
	}

	caption := truncate(fmt.Sprintf("%s: %s", res.Target, res.Text), maxCaptionLen)

	if len(res.Artifact.Audio) == 0 {
		bot.Send(tgbotapi.NewMessage(chatID, caption))
		return
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: res.Artifact.Name, Bytes: res.Artifact.Audio})
	voice.Caption = caption
	if _, err := bot.Send(voice); err != nil {
		log.Printf("[voice] send fail target=%s: %v", res.Target, err)
		bot.Send(tgbotapi.NewMessage(chatID, caption))
	}
}

func (app *BotApp) download(ctx context.Context, url, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := app.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram file status %d", resp.StatusCode)
	}

	out, err := os.CreateTemp("", "voice-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
