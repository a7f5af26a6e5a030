// Package presenca monta o link de registro de presença e o QR code exibido no telão.
package presenca

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// DefaultQRSize é o lado do PNG em pixels.
const DefaultQRSize = 512

// Links gera URLs de presença a partir do endereço público do app.
type Links struct {
	base string
}

// NewLinks valida a base pública. Barras finais são removidas.
func NewLinks(baseURL string) (*Links, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("presenca: base pública inválida %q", baseURL)
	}
	return &Links{base: baseURL}, nil
}

// URL devolve o link que o morador abre para registrar presença.
func (l *Links) URL(assembleiaID uuid.UUID) string {
	return fmt.Sprintf("%s/assembleias/%s/presenca", l.base, assembleiaID)
}

// QRCode renderiza o link como PNG.
func (l *Links) QRCode(assembleiaID uuid.UUID, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(l.URL(assembleiaID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("presenca: gerar qrcode: %w", err)
	}
	return png, nil
}
