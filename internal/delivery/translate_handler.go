package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/swetalanaparida/EchoTranslate/internal/config"
	"github.com/swetalanaparida/EchoTranslate/internal/pipeline"
	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	"github.com/swetalanaparida/EchoTranslate/internal/transcription"
)

const maxUploadSize = 25 << 20

type Runner interface {
	Run(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (*pipeline.Output, error)
	RunPartial(ctx context.Context, audioPath string, targets []ports.LanguageTarget) (*pipeline.Output, error)
}

type TranslateHandler struct {
	runner  Runner
	targets []ports.LanguageTarget
	partial bool
	log     *logger.ZapLogger
}

func NewTranslateHandler(runner Runner, targets []ports.LanguageTarget, partial bool, log *logger.ZapLogger) *TranslateHandler {
	return &TranslateHandler{
		runner:  runner,
		targets: targets,
		partial: partial,
		log:     log,
	}
}

type resultDTO struct {
	Target   string `json:"target"`
	Text     string `json:"text"`
	AudioURL string `json:"audio_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

type translateResponse struct {
	Transcript string      `json:"transcript"`
	Results    []resultDTO `json:"results"`
}

// POST /v1/translate (multipart: audio, targets)
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	targets := h.targets
	if raw := strings.TrimSpace(r.FormValue("targets")); raw != "" {
		parsed, err := config.ParseTargets(strings.Split(raw, ","))
		if err != nil {
			http.Error(w, "invalid targets: "+err.Error(), http.StatusBadRequest)
			return
		}
		targets = parsed
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing audio", Error: err})
		http.Error(w, "missing audio: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := saveUpload(file, filepath.Ext(header.Filename))
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store upload", Error: err})
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(path)

	run := h.runner.Run
	if h.partial {
		run = h.runner.RunPartial
	}

	out, err := run(r.Context(), path, targets)
	if err != nil {
		status := statusFor(err)
		level := "error"
		if status < http.StatusInternalServerError {
			level = "warn"
		}
		h.log.Log(logger.LogEntry{Level: level, Message: "pipeline failed", Error: err})
		http.Error(w, err.Error(), status)
		return
	}

	resp := translateResponse{Transcript: out.Transcript, Results: make([]resultDTO, len(out.Results))}
	for i, res := range out.Results {
		dto := resultDTO{Target: string(res.Target), Text: res.Text, AudioURL: res.Artifact.Location}
		if res.Err != nil {
			dto.Error = res.Err.Error()
		}
		resp.Results[i] = dto
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// GET /v1/targets
func (h *TranslateHandler) Targets(w http.ResponseWriter, _ *http.Request) {
	codes := make([]string, len(h.targets))
	for i, t := range h.targets {
		codes[i] = string(t)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"targets": codes})
}

func statusFor(err error) int {
	var trErr *pipeline.TranscriptionError
	switch {
	case errors.As(err, &trErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrInvalidTargets), errors.Is(err, transcription.ErrEmptyAudio):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func saveUpload(r io.Reader, ext string) (string, error) {
	if ext == "" {
		ext = ".bin"
	}
	f, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
