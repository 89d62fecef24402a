package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

type fakeClient struct {
	calls int
	res   ports.TranscriptionResult
	err   error
}

func (f *fakeClient) Transcribe(ctx context.Context, audioPath string) (ports.TranscriptionResult, error) {
	f.calls++
	return f.res, f.err
}

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.wav")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestService_TranscribeOK(t *testing.T) {
	client := &fakeClient{res: ports.TranscriptionResult{Status: ports.TranscriptionOK, Text: "hello"}}
	svc := NewService(client, zap.NewNop())

	res, err := svc.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, 1, client.calls)
}

func TestService_EmptyTranscriptIsNotAnError(t *testing.T) {
	client := &fakeClient{res: ports.TranscriptionResult{Status: ports.TranscriptionOK}}
	svc := NewService(client, zap.NewNop())

	res, err := svc.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Text)
}

func TestService_ProviderErrorStatusPassesThrough(t *testing.T) {
	client := &fakeClient{res: ports.TranscriptionResult{Status: ports.TranscriptionError, ErrorMessage: "audio too short"}}
	svc := NewService(client, zap.NewNop())

	res, err := svc.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, "audio too short", res.ErrorMessage)
}

func TestService_TransportErrorBecomesErrorStatus(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset")}
	svc := NewService(client, zap.NewNop())

	res, err := svc.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.Equal(t, ports.TranscriptionError, res.Status)
	assert.Contains(t, res.ErrorMessage, "connection reset")
	assert.Equal(t, 1, client.calls, "transcription is never retried")
}

func TestService_RejectsEmptyOrMissingInput(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, zap.NewNop())

	_, err := svc.Transcribe(context.Background(), writeAudio(t, ""))
	assert.ErrorIs(t, err, ErrEmptyAudio)

	_, err = svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Zero(t, client.calls)
}
