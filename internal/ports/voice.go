package ports

// LanguageTarget — код языка перевода и озвучки ("es", "ja").
type LanguageTarget string

type TranscriptionStatus string

const (
	TranscriptionOK    TranscriptionStatus = "ok"
	TranscriptionError TranscriptionStatus = "error"
)

// TranscriptionResult — итог распознавания. Text валиден только при ok,
// ErrorMessage только при error. Пустой Text при ok — не ошибка.
type TranscriptionResult struct {
	Status       TranscriptionStatus
	Text         string
	ErrorMessage string
}

func (r TranscriptionResult) OK() bool {
	return r.Status == TranscriptionOK
}

type Translation struct {
	Target LanguageTarget `json:"target"`
	Text   string         `json:"text"`
}

// Artifact — синтезированное аудио для одного языка
type Artifact struct {
	Target      LanguageTarget
	Name        string
	Location    string
	ContentType string
	Audio       []byte
}

// TargetResult — результат по одному языку. Err != nil, если перевод или
// синтез для этого языка не удался.
type TargetResult struct {
	Target   LanguageTarget
	Text     string
	Artifact Artifact
	Err      error
}
