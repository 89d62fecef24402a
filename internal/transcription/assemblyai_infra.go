package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

// AssemblyAIClient: загрузка файла -> создание транскрипта -> опрос статуса
type AssemblyAIClient struct {
	apiKey    string
	baseURL   string
	language  string
	pollEvery time.Duration
	client    *http.Client
}

func NewAssemblyAIClient(apiKey, language string, pollEvery time.Duration) *AssemblyAIClient {
	if pollEvery <= 0 {
		pollEvery = 3 * time.Second
	}
	return &AssemblyAIClient{
		apiKey:    apiKey,
		baseURL:   "https://api.assemblyai.com",
		language:  language,
		pollEvery: pollEvery,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *AssemblyAIClient) WithBaseURL(base string) *AssemblyAIClient {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

type assemblyTranscript struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioPath string) (ports.TranscriptionResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return ports.TranscriptionResult{}, fmt.Errorf("read audio file: %w", err)
	}

	uploadURL, err := c.upload(ctx, data)
	if err != nil {
		return ports.TranscriptionResult{}, err
	}

	reqBody := map[string]any{"audio_url": uploadURL}
	if c.language != "" {
		reqBody["language_code"] = c.language
	}

	var created assemblyTranscript
	if err := c.doJSON(ctx, http.MethodPost, "/v2/transcript", reqBody, &created); err != nil {
		return ports.TranscriptionResult{}, fmt.Errorf("assemblyai create transcript: %w", err)
	}

	tr := created
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		switch tr.Status {
		case "completed":
			return ports.TranscriptionResult{Status: ports.TranscriptionOK, Text: tr.Text}, nil
		case "error":
			return ports.TranscriptionResult{Status: ports.TranscriptionError, ErrorMessage: tr.Error}, nil
		}

		select {
		case <-ctx.Done():
			return ports.TranscriptionResult{}, ctx.Err()
		case <-ticker.C:
		}

		if err := c.doJSON(ctx, http.MethodGet, "/v2/transcript/"+created.ID, nil, &tr); err != nil {
			return ports.TranscriptionResult{}, fmt.Errorf("assemblyai poll transcript: %w", err)
		}
	}
}

func (c *AssemblyAIClient) upload(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assemblyai upload: status=%d body=%s", resp.StatusCode, b)
	}

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode assemblyai upload: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("assemblyai upload: empty upload_url")
	}
	return out.UploadURL, nil
}

func (c *AssemblyAIClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, b)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
