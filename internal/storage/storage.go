package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader define comportamento básico para armazenar blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// New escolhe o backend pelo provedor configurado: noop, s3 ou r2.
func New(ctx context.Context, provider string, cfg S3Config) (Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "noop":
		return NoopUploader{}, nil
	case "s3":
		return NewS3Uploader(ctx, cfg)
	case "r2":
		// R2 ignora a região, mas o SDK exige uma
		if strings.TrimSpace(cfg.Region) == "" {
			cfg.Region = "auto"
		}
		return NewS3Uploader(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: provedor desconhecido %q", provider)
	}
}

// ChaveAta monta a chave do objeto onde a ata de uma assembleia é publicada.
func ChaveAta(assembleiaID uuid.UUID, arquivo string) string {
	return fmt.Sprintf("atas/%s/%s", assembleiaID, strings.TrimLeft(arquivo, "/"))
}
