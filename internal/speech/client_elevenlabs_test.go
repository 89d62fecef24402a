package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsClient_StreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1/stream", r.URL.Path)
		assert.Equal(t, "mp3_22050_32", r.URL.Query().Get("output_format"))
		assert.Equal(t, "0", r.URL.Query().Get("optimize_streaming_latency"))
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))

		var req ttsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hola", req.Text)
		assert.Equal(t, "eleven_multilingual_v2", req.ModelID)
		assert.Equal(t, voiceSettings{Stability: 0.5, SimilarityBoost: 0.8, Style: 0.5, UseSpeakerBoost: true}, req.VoiceSettings)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("frames"))
	}))
	defer srv.Close()

	stream, err := NewElevenLabsClient("xi-key").WithBaseURL(srv.URL).Synthesize(context.Background(), "hola", testVoice)
	require.NoError(t, err)
	defer stream.Close()

	var got []byte
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, chunk...)
	}
	assert.Equal(t, "ID3frames", string(got))

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
}

func TestElevenLabsClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":{"status":"quota_exceeded"}}`))
	}))
	defer srv.Close()

	_, err := NewElevenLabsClient("xi-key").WithBaseURL(srv.URL).Synthesize(context.Background(), "hola", testVoice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
	assert.Contains(t, err.Error(), "quota_exceeded")
}
