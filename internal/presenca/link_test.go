package presenca

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	l, err := NewLinks("https://app.condominio.com.br/")
	require.NoError(t, err)

	id := uuid.MustParse("6f1c2d8e-0b8a-4c36-9f53-2f1f0a4c9d11")
	assert.Equal(t, "https://app.condominio.com.br/assembleias/6f1c2d8e-0b8a-4c36-9f53-2f1f0a4c9d11/presenca", l.URL(id))
}

func TestNewLinksRejectsRelative(t *testing.T) {
	for _, base := range []string{"", "app.condominio", "/assembleias"} {
		_, err := NewLinks(base)
		assert.Error(t, err, base)
	}
}

func TestQRCodeIsPNG(t *testing.T) {
	l, err := NewLinks("http://localhost:5173")
	require.NoError(t, err)

	data, err := l.QRCode(uuid.New(), 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
