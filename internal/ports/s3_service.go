package ports

import "context"

// ArtifactStore сохраняет готовое аудио и возвращает путь или публичный URL
type ArtifactStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (location string, err error)
}
