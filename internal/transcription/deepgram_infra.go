package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

type DeepgramClient struct {
	apiKey   string
	baseURL  string
	model    string
	language string
	client   *http.Client
}

func NewDeepgramClient(apiKey, language string) *DeepgramClient {
	return &DeepgramClient{
		apiKey:   apiKey,
		baseURL:  "https://api.deepgram.com",
		model:    "nova-2",
		language: language,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// WithBaseURL — для тестов и прокси
func (c *DeepgramClient) WithBaseURL(base string) *DeepgramClient {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c *DeepgramClient) Transcribe(ctx context.Context, audioPath string) (ports.TranscriptionResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return ports.TranscriptionResult{}, fmt.Errorf("read audio file: %w", err)
	}

	q := url.Values{}
	q.Set("model", c.model)
	q.Set("smart_format", "true")
	if c.language != "" {
		q.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/listen?"+q.Encode(),
		bytes.NewReader(data),
	)
	if err != nil {
		return ports.TranscriptionResult{}, err
	}

	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentTypeFor(audioPath))

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.TranscriptionResult{}, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return ports.TranscriptionResult{
			Status:       ports.TranscriptionError,
			ErrorMessage: fmt.Sprintf("deepgram error: status=%d body=%s", resp.StatusCode, body),
		}, nil
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return ports.TranscriptionResult{}, fmt.Errorf("decode deepgram: %w", err)
	}

	// нет каналов — речи не нашли, это не ошибка
	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return ports.TranscriptionResult{Status: ports.TranscriptionOK}, nil
	}

	return ports.TranscriptionResult{
		Status: ports.TranscriptionOK,
		Text:   parsed.Results.Channels[0].Alternatives[0].Transcript,
	}, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".webm":
		return "audio/webm"
	case ".flac":
		return "audio/flac"
	}
	return "application/octet-stream"
}
