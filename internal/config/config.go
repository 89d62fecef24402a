package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

const (
	STTAssemblyAI = "assemblyai"
	STTDeepgram   = "deepgram"

	TranslatorMyMemory = "mymemory"
	TranslatorOpenAI   = "openai"
)

// Config собирается один раз при старте и передаётся в конструкторы.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	STTProvider    string        `env:"STT_PROVIDER" envDefault:"assemblyai"`
	AssemblyAIKey  string        `env:"ASSEMBLYAI_KEY"`
	DeepgramKey    string        `env:"DEEPGRAM_API_KEY"`
	STTPollEvery   time.Duration `env:"STT_POLL_INTERVAL" envDefault:"3s"`
	SourceLanguage string        `env:"SOURCE_LANGUAGE" envDefault:"en"`

	Translator    string   `env:"TRANSLATOR" envDefault:"mymemory"`
	MyMemoryEmail string   `env:"MYMEMORY_EMAIL"`
	OpenAIKey     string   `env:"OPENAI_API_KEY"`
	OpenAIModel   string   `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Targets       []string `env:"TARGET_LANGUAGES" envDefault:"ru,tr,sv,de,es,ja" envSeparator:","`

	ElevenLabsKey string `env:"ELEVENLABS_KEY"`
	Voice         Voice

	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryDelay       time.Duration `env:"RETRY_DELAY" envDefault:"5s"`
	Concurrency      int           `env:"CONCURRENCY" envDefault:"4"`
	PartialResults   bool          `env:"PARTIAL_RESULTS" envDefault:"false"`
	PipelineTimeout  time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"5m"`

	ArtifactDir   string `env:"ARTIFACT_DIR" envDefault:"./artifacts"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	S3            S3

	TelegramToken       string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID"`
}

// Voice — параметры голоса ElevenLabs
type Voice struct {
	VoiceID         string  `env:"VOICE_ID"`
	ModelID         string  `env:"TTS_MODEL_ID" envDefault:"eleven_multilingual_v2"`
	OutputFormat    string  `env:"TTS_OUTPUT_FORMAT" envDefault:"mp3_22050_32"`
	Stability       float64 `env:"TTS_STABILITY" envDefault:"0.5"`
	SimilarityBoost float64 `env:"TTS_SIMILARITY_BOOST" envDefault:"0.8"`
	Style           float64 `env:"TTS_STYLE" envDefault:"0.5"`
	SpeakerBoost    bool    `env:"TTS_SPEAKER_BOOST" envDefault:"true"`
	OptimizeLatency int     `env:"TTS_OPTIMIZE_LATENCY" envDefault:"0"`
}

type S3 struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION"`
	Insecure  bool   `env:"S3_INSECURE" envDefault:"false"`
}

func (s S3) Enabled() bool { return s.Endpoint != "" }

// ConfigurationError — чего не хватает в окружении
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return "configuration: " + strings.Join(parts, "; ")
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load читает .env (если есть) и окружение процесса
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom — то же, но из переданной карты, без .env и os.Environ
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate собирает все проблемы сразу, а не по одной
func (c *Config) Validate() error {
	var missing []string
	var errs []error

	switch c.STTProvider {
	case STTAssemblyAI:
		if c.AssemblyAIKey == "" {
			missing = append(missing, "ASSEMBLYAI_KEY")
		}
	case STTDeepgram:
		if c.DeepgramKey == "" {
			missing = append(missing, "DEEPGRAM_API_KEY")
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STT_PROVIDER %q", c.STTProvider))
	}

	switch c.Translator {
	case TranslatorMyMemory:
	case TranslatorOpenAI:
		if c.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSLATOR %q", c.Translator))
	}

	if c.ElevenLabsKey == "" {
		missing = append(missing, "ELEVENLABS_KEY")
	}
	if c.Voice.VoiceID == "" {
		missing = append(missing, "VOICE_ID")
	}

	if c.S3.Enabled() {
		if c.S3.AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if c.S3.SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if c.S3.Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
	}

	if _, err := ParseTargets(c.Targets); err != nil {
		errs = append(errs, err)
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 1, got %d", c.RetryMaxAttempts))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("RETRY_DELAY must not be negative"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("CONCURRENCY must be >= 1, got %d", c.Concurrency))
	}

	if len(missing) == 0 && len(errs) == 0 {
		return nil
	}
	return &ConfigurationError{Missing: missing, Err: errors.Join(errs...)}
}

// LanguageTargets — целевые языки в порядке из конфига
func (c *Config) LanguageTargets() []ports.LanguageTarget {
	targets, _ := ParseTargets(c.Targets)
	return targets
}

// ParseTargets нормализует коды языков; пустые и повторы — ошибка
func ParseTargets(codes []string) ([]ports.LanguageTarget, error) {
	if len(codes) == 0 {
		return nil, errors.New("no target languages configured")
	}

	seen := make(map[string]bool, len(codes))
	out := make([]ports.LanguageTarget, 0, len(codes))
	for _, raw := range codes {
		code := strings.ToLower(strings.TrimSpace(raw))
		if code == "" {
			return nil, errors.New("empty target language code")
		}
		if seen[code] {
			return nil, fmt.Errorf("duplicate target language %q", code)
		}
		seen[code] = true
		out = append(out, ports.LanguageTarget(code))
	}
	return out, nil
}
