package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const chunkSize = 32 * 1024

type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	httpCli *http.Client
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		baseURL: "https://api.elevenlabs.io",
		httpCli: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *ElevenLabsClient) WithBaseURL(base string) *ElevenLabsClient {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// TEXT → SPEECH, тело ответа отдаём потоком
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, voice VoiceConfig) (ChunkStream, error) {
	payload, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: voice.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       voice.Stability,
			SimilarityBoost: voice.SimilarityBoost,
			Style:           voice.Style,
			UseSpeakerBoost: voice.SpeakerBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	if voice.OutputFormat != "" {
		q.Set("output_format", voice.OutputFormat)
	}
	q.Set("optimize_streaming_latency", strconv.Itoa(voice.OptimizeLatency))

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?%s", c.baseURL, url.PathEscape(voice.VoiceID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs error: status=%d body=%s", resp.StatusCode, string(b))
	}

	return &bodyStream{body: resp.Body, buf: make([]byte, chunkSize)}, nil
}

type bodyStream struct {
	body io.ReadCloser
	buf  []byte
	done bool
}

func (s *bodyStream) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	n, err := s.body.Read(s.buf)
	if err == io.EOF {
		s.done = true
		if n == 0 {
			return nil, io.EOF
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	chunk := make([]byte, n)
	copy(chunk, s.buf[:n])
	return chunk, nil
}

func (s *bodyStream) Close() error {
	return s.body.Close()
}
