package transcription

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

func TestDeepgramClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "RIFF", string(body))

		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hello world"}]}]}}`))
	}))
	defer srv.Close()

	c := NewDeepgramClient("dg-key", "en").WithBaseURL(srv.URL)
	res, err := c.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.Equal(t, ports.TranscriptionResult{Status: ports.TranscriptionOK, Text: "hello world"}, res)
}

func TestDeepgramClient_NoChannelsMeansNoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer srv.Close()

	res, err := NewDeepgramClient("k", "").WithBaseURL(srv.URL).Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Text)
}

func TestDeepgramClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"err_msg":"invalid credentials"}`))
	}))
	defer srv.Close()

	res, err := NewDeepgramClient("bad", "en").WithBaseURL(srv.URL).Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.Equal(t, ports.TranscriptionError, res.Status)
	assert.Contains(t, res.ErrorMessage, "invalid credentials")
}

func newAssemblyServer(t *testing.T, final map[string]string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aai-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio-1"})
	})
	mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn.example/audio-1", req["audio_url"])
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "tr-1", "status": "queued"})
	})
	mux.HandleFunc("/v2/transcript/tr-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 2 {
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "tr-1", "status": "processing"})
			return
		}
		_ = json.NewEncoder(w).Encode(final)
	})

	return httptest.NewServer(mux), &polls
}

func TestAssemblyAIClient_PollsUntilCompleted(t *testing.T) {
	srv, polls := newAssemblyServer(t, map[string]string{"id": "tr-1", "status": "completed", "text": "hello"})
	defer srv.Close()

	c := NewAssemblyAIClient("aai-key", "", time.Millisecond).WithBaseURL(srv.URL)
	res, err := c.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.Equal(t, ports.TranscriptionResult{Status: ports.TranscriptionOK, Text: "hello"}, res)
	assert.Equal(t, int32(2), atomic.LoadInt32(polls))
}

func TestAssemblyAIClient_ErrorStatus(t *testing.T) {
	srv, _ := newAssemblyServer(t, map[string]string{"id": "tr-1", "status": "error", "error": "file does not appear to contain audio"})
	defer srv.Close()

	c := NewAssemblyAIClient("aai-key", "", time.Millisecond).WithBaseURL(srv.URL)
	res, err := c.Transcribe(context.Background(), writeAudio(t, "RIFF"))
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, "file does not appear to contain audio", res.ErrorMessage)
}

func TestAssemblyAIClient_CancelStopsPolling(t *testing.T) {
	srv, _ := newAssemblyServer(t, map[string]string{"id": "tr-1", "status": "processing"})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewAssemblyAIClient("aai-key", "", 5*time.Millisecond).WithBaseURL(srv.URL)
	_, err := c.Transcribe(ctx, writeAudio(t, "RIFF"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
