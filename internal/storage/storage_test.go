package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (s *stubS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.input = params
	s.body, _ = io.ReadAll(params.Body)
	if s.err != nil {
		return nil, s.err
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func validConfig() S3Config {
	return S3Config{
		Endpoint:  "https://conta.r2.cloudflarestorage.com",
		Region:    "auto",
		Bucket:    "atas",
		AccessKey: "key",
		SecretKey: "secret",
	}
}

func TestUpload(t *testing.T) {
	stub := &stubS3{}
	u := &S3Uploader{cfg: validConfig(), client: stub}

	res, err := u.Upload(context.Background(), UploadInput{
		Key:         "/atas/x/votacao agosto.pdf",
		Body:        []byte("%PDF-1.3"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "atas", aws.ToString(stub.input.Bucket))
	assert.Equal(t, "atas/x/votacao agosto.pdf", aws.ToString(stub.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(stub.input.ContentType))
	assert.Nil(t, stub.input.CacheControl)
	assert.Equal(t, []byte("%PDF-1.3"), stub.body)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://conta.r2.cloudflarestorage.com/atas/atas/x/votacao%20agosto.pdf", res.URL)
}

func TestUploadPublicDomain(t *testing.T) {
	cfg := validConfig()
	cfg.PublicDomain = "https://arquivos.condominio.com.br/"
	u := &S3Uploader{cfg: cfg, client: &stubS3{}}

	res, err := u.Upload(context.Background(), UploadInput{Key: "atas/a.pdf", Body: []byte("x"), CacheControl: "public, max-age=60"})
	require.NoError(t, err)
	assert.Equal(t, "https://arquivos.condominio.com.br/atas/a.pdf", res.URL)
}

func TestUploadRejectsEmpty(t *testing.T) {
	u := &S3Uploader{cfg: validConfig(), client: &stubS3{}}

	_, err := u.Upload(context.Background(), UploadInput{Key: " ", Body: []byte("x")})
	assert.Error(t, err)
	_, err = u.Upload(context.Background(), UploadInput{Key: "a.pdf"})
	assert.Error(t, err)
}

func TestUploadWrapsClientError(t *testing.T) {
	boom := errors.New("timeout")
	u := &S3Uploader{cfg: validConfig(), client: &stubS3{err: boom}}

	_, err := u.Upload(context.Background(), UploadInput{Key: "a.pdf", Body: []byte("x")})
	assert.ErrorIs(t, err, boom)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	cfg.Endpoint = "conta.r2.cloudflarestorage.com"
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.Bucket = ""
	assert.Error(t, cfg.validate())

	assert.NoError(t, validConfig().validate())
}

func TestNewProvider(t *testing.T) {
	u, err := New(context.Background(), "noop", S3Config{})
	require.NoError(t, err)
	_, err = u.Upload(context.Background(), UploadInput{Key: "a", Body: []byte("x")})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(context.Background(), "ftp", S3Config{})
	assert.Error(t, err)

	cfg := validConfig()
	cfg.Region = ""
	u, err = New(context.Background(), "r2", cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3Uploader{}, u)
}

func TestChaveAta(t *testing.T) {
	id := uuid.MustParse("6f1c2d8e-0b8a-4c36-9f53-2f1f0a4c9d11")
	assert.Equal(t, "atas/6f1c2d8e-0b8a-4c36-9f53-2f1f0a4c9d11/votacao-ago-2026-03-11.pdf", ChaveAta(id, "votacao-ago-2026-03-11.pdf"))
}
