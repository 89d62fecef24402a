package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MyMemory принимает не больше 500 символов за запрос
const myMemoryChunkSize = 500

type MyMemoryTranslator struct {
	baseURL string
	email   string
	client  *http.Client
}

func NewMyMemoryTranslator(email string) *MyMemoryTranslator {
	return &MyMemoryTranslator{
		baseURL: "https://api.mymemory.translated.net",
		email:   email,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *MyMemoryTranslator) WithBaseURL(base string) *MyMemoryTranslator {
	t.baseURL = strings.TrimRight(base, "/")
	return t
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

func (t *MyMemoryTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	chunks := splitTextByChars(text, myMemoryChunkSize)
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		translated, err := t.translateChunk(ctx, chunk, from, to)
		if err != nil {
			return "", err
		}
		parts = append(parts, translated)
	}

	return strings.Join(parts, " "), nil
}

func (t *MyMemoryTranslator) translateChunk(ctx context.Context, text, from, to string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", from+"|"+to)
	if t.email != "" {
		q.Set("de", t.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory error: status=%d body=%s", resp.StatusCode, body)
	}

	var out myMemoryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode mymemory: %w", err)
	}

	// responseStatus приходит то числом, то строкой
	status, _ := strconv.Atoi(strings.Trim(string(out.ResponseStatus), `"`))
	if status != http.StatusOK {
		return "", fmt.Errorf("mymemory status %d: %s", status, out.ResponseDetails)
	}

	return strings.TrimSpace(out.ResponseData.TranslatedText), nil
}

func splitTextByChars(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], " ")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
