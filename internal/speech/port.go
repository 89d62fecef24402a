package speech

import "context"

// VoiceConfig — параметры голоса, уходят в каждый запрос синтеза
type VoiceConfig struct {
	VoiceID         string
	ModelID         string
	OutputFormat    string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
	OptimizeLatency int
}

// ChunkStream — ответ синтеза кусками. Конец потока — io.EOF,
// пустой кусок концом не считается.
type ChunkStream interface {
	Next() ([]byte, error)
	Close() error
}

type TTSClient interface {
	Synthesize(ctx context.Context, text string, voice VoiceConfig) (ChunkStream, error)
}
