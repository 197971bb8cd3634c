package application

import (
	"context"

	"shopping-list/internal/domain"
)

// UploadArchive keeps a copy of received audio for debugging.
type UploadArchive interface {
	Save(ctx context.Context, upload domain.Upload) (string, error)
}

type NoopArchive struct{}

func (n *NoopArchive) Save(_ context.Context, _ domain.Upload) (string, error) {
	return "", nil
}
