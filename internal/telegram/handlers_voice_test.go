package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/swetalanaparida/EchoTranslate/internal/pipeline"
	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu      sync.Mutex
	fileURL string
	fileErr error
	sent    []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	return b.fileURL, b.fileErr
}

type fakeRunner struct {
	out        *pipeline.Output
	err        error
	audio      []byte
	path       string
	partialRun bool
}

func (f *fakeRunner) Run(_ context.Context, path string, _ []ports.LanguageTarget) (*pipeline.Output, error) {
	f.path = path
	f.audio, _ = os.ReadFile(path)
	return f.out, f.err
}

func (f *fakeRunner) RunPartial(ctx context.Context, path string, targets []ports.LanguageTarget) (*pipeline.Output, error) {
	f.partialRun = true
	return f.Run(ctx, path, targets)
}

type fakeNotify struct {
	errs []error
}

func (n *fakeNotify) Notify(_ context.Context, err error, _ string) error {
	n.errs = append(n.errs, err)
	return nil
}

func fileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OggS"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func voiceMessage() *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 99},
		Voice: &tgbotapi.Voice{FileID: "file-1"},
	}
}

func TestHandleVoice_SendsOneVoicePerTarget(t *testing.T) {
	runner := &fakeRunner{out: &pipeline.Output{
		Transcript: "hello",
		Results: []ports.TargetResult{
			{Target: "es", Text: "hola", Artifact: ports.Artifact{Name: "a.mp3", Audio: []byte("ID3a")}},
			{Target: "ja", Text: "こんにちは", Artifact: ports.Artifact{Name: "b.mp3", Audio: []byte("ID3b")}},
		},
	}}
	bot := &fakeBot{fileURL: fileServer(t).URL + "/file.oga"}
	app := NewBotApp(runner, []ports.LanguageTarget{"es", "ja"}, false, nil)

	app.handleMessage(context.Background(), bot, voiceMessage())

	assert.Equal(t, []byte("OggS"), runner.audio)
	assert.False(t, runner.partialRun)
	_, err := os.Stat(runner.path)
	assert.True(t, os.IsNotExist(err))

	require.Len(t, bot.sent, 2)
	first := bot.sent[0].(tgbotapi.VoiceConfig)
	assert.Equal(t, int64(99), first.ChatID)
	assert.Equal(t, "es: hola", first.Caption)
	assert.Equal(t, "ja: こんにちは", bot.sent[1].(tgbotapi.VoiceConfig).Caption)
}

func TestHandleVoice_TranscriptionErrorIsReported(t *testing.T) {
	runner := &fakeRunner{err: &pipeline.TranscriptionError{Message: "no speech detected"}}
	notify := &fakeNotify{}
	bot := &fakeBot{fileURL: fileServer(t).URL}
	app := NewBotApp(runner, []ports.LanguageTarget{"es"}, false, notify)

	app.handleMessage(context.Background(), bot, voiceMessage())

	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].(tgbotapi.MessageConfig).Text, "no speech detected")
	assert.Empty(t, notify.errs)
}

func TestHandleVoice_PipelineErrorNotifiesAdmin(t *testing.T) {
	boom := errors.New("tts down")
	notify := &fakeNotify{}
	bot := &fakeBot{fileURL: fileServer(t).URL}
	app := NewBotApp(&fakeRunner{err: boom}, []ports.LanguageTarget{"es"}, false, notify)

	app.handleMessage(context.Background(), bot, voiceMessage())

	require.Len(t, bot.sent, 1)
	assert.Equal(t, []error{boom}, notify.errs)
}

func TestHandleVoice_PartialResults(t *testing.T) {
	quota := errors.New("quota")
	runner := &fakeRunner{out: &pipeline.Output{Results: []ports.TargetResult{
		{Target: "es", Text: "hola"},
		{Target: "tr", Err: quota},
	}}}
	notify := &fakeNotify{}
	bot := &fakeBot{fileURL: fileServer(t).URL}
	app := NewBotApp(runner, []ports.LanguageTarget{"es", "tr"}, true, notify)

	app.handleMessage(context.Background(), bot, voiceMessage())

	assert.True(t, runner.partialRun)
	require.Len(t, bot.sent, 2)
	assert.Equal(t, "es: hola", bot.sent[0].(tgbotapi.MessageConfig).Text)
	assert.Contains(t, bot.sent[1].(tgbotapi.MessageConfig).Text, "tr")
	assert.Equal(t, []error{quota}, notify.errs)
}

func TestHandleVoice_GetFileFails(t *testing.T) {
	runner := &fakeRunner{}
	bot := &fakeBot{fileErr: errors.New("bad file")}
	app := NewBotApp(runner, []ports.LanguageTarget{"es"}, false, nil)

	app.handleMessage(context.Background(), bot, voiceMessage())

	require.Len(t, bot.sent, 1)
	assert.Empty(t, runner.path)
}

func TestHandleMessage_TextAndCommands(t *testing.T) {
	bot := &fakeBot{}
	app := NewBotApp(&fakeRunner{}, []ports.LanguageTarget{"es", "tr"}, false, nil)

	app.handleMessage(context.Background(), bot, &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"})
	app.handleMessage(context.Background(), bot, &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 1},
		Text:     "/targets",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
	})

	require.Len(t, bot.sent, 2)
	assert.Contains(t, bot.sent[0].(tgbotapi.MessageConfig).Text, "es, tr")
	assert.Equal(t, "Языки: es, tr", bot.sent[1].(tgbotapi.MessageConfig).Text)
}

func TestAudioExtAndTruncate(t *testing.T) {
	assert.Equal(t, ".mp3", audioExt(&tgbotapi.Audio{FileName: "Talk.MP3"}))
	assert.Equal(t, ".wav", audioExt(&tgbotapi.Audio{MimeType: "audio/wav"}))
	assert.Equal(t, ".ogg", audioExt(&tgbotapi.Audio{}))

	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
