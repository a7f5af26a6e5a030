package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/condominio/internal/assembleia"
	"github.com/gestaozabele/condominio/internal/presenca"
)

type assembleiaPayload struct {
	CondominioID uuid.UUID `json:"condominio_id"`
	Titulo       string    `json:"titulo"`
	AgendadaPara time.Time `json:"agendada_para"`
	Topicos      []string  `json:"topicos"`
	EditalURL    *string   `json:"edital_url"`
}

type assembleiaUpdatePayload struct {
	Titulo       *string    `json:"titulo"`
	AgendadaPara *time.Time `json:"agendada_para"`
	Topicos      []string   `json:"topicos"`
	EditalURL    *string    `json:"edital_url"`
}

type assembleiaDetalhe struct {
	assembleia.Assembleia
	Pautas []assembleia.Pauta `json:"pautas"`
}

// ListAssembleias lista assembleias, opcionalmente filtrando por ?condominio=.
func (h *Handler) ListAssembleias(w http.ResponseWriter, r *http.Request) {
	condominioID := uuid.Nil
	if raw := strings.TrimSpace(r.URL.Query().Get("condominio")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "condominio inválido", nil)
			return
		}
		condominioID = id
	}

	items, err := h.assembleias.ListAssembleias(r.Context(), condominioID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) CreateAssembleia(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}

	var payload assembleiaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	created, err := h.assembleias.CriarAssembleia(r.Context(), a, assembleia.NovaAssembleiaInput{
		CondominioID: payload.CondominioID,
		Titulo:       payload.Titulo,
		AgendadaPara: payload.AgendadaPara,
		Topicos:      payload.Topicos,
		EditalURL:    payload.EditalURL,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// GetAssembleia devolve a assembleia com suas pautas em ordem.
func (h *Handler) GetAssembleia(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	a, err := h.assembleias.GetAssembleia(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	pautas, err := h.assembleias.ListPautas(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, assembleiaDetalhe{Assembleia: a, Pautas: pautas})
}

func (h *Handler) UpdateAssembleia(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	var payload assembleiaUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	updated, err := h.assembleias.AtualizarAssembleia(r.Context(), a, id, assembleia.AtualizarAssembleiaInput{
		Titulo:       payload.Titulo,
		AgendadaPara: payload.AgendadaPara,
		Topicos:      payload.Topicos,
		EditalURL:    payload.EditalURL,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAssembleia(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.assembleias.ExcluirAssembleia(r.Context(), a, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) IniciarAssembleia(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, h.assembleias.IniciarAssembleia)
}

func (h *Handler) EncerrarAssembleia(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, h.assembleias.EncerrarAssembleia)
}

func (h *Handler) CancelarAssembleia(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, h.assembleias.CancelarAssembleia)
}

type transicaoAssembleia func(ctx context.Context, ator assembleia.Ator, id uuid.UUID) (assembleia.Assembleia, error)

func (h *Handler) transicionar(w http.ResponseWriter, r *http.Request, fn transicaoAssembleia) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	updated, err := fn(r.Context(), a, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// RegistrarPresenca marca o autor da requisição como presente. Fora do
// andamento a resposta é 200 com registrada=false e o motivo, para a tela de
// presença mostrar a mensagem sem tratar como falha.
func (h *Handler) RegistrarPresenca(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	p, err := h.assembleias.RegistrarPresenca(r.Context(), id, a.ID)
	if errors.Is(err, assembleia.ErrInvalidState) {
		atual, getErr := h.assembleias.GetAssembleia(r.Context(), id)
		if getErr != nil {
			writeDomainError(w, r, getErr)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"registrada": false,
			"status":     atual.Status,
			"motivo":     motivoPresenca(atual.Status),
		})
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"registrada": true, "presenca": p})
}

func motivoPresenca(status assembleia.StatusAssembleia) string {
	switch status {
	case assembleia.AssembleiaAgendada:
		return "a assembleia ainda não começou"
	case assembleia.AssembleiaEncerrada:
		return "a assembleia já foi encerrada"
	case assembleia.AssembleiaCancelada:
		return "a assembleia foi cancelada"
	}
	return "presença indisponível"
}

func (h *Handler) ListPresencas(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	items, err := h.assembleias.ListPresencas(r.Context(), a, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// PresencaLink devolve o link de presença e o QR code em base64 para o telão.
func (h *Handler) PresencaLink(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.assembleias.GetAssembleia(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	png, err := h.links.QRCode(id, presenca.DefaultQRSize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"url":    h.links.URL(id),
		"qrcode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

func (h *Handler) PresencaQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.assembleias.GetAssembleia(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	png, err := h.links.QRCode(id, presenca.DefaultQRSize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// ApuracaoAssembleia devolve a apuração ao vivo de todas as pautas.
func (h *Handler) ApuracaoAssembleia(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	items, err := h.assembleias.ApuracaoAssembleia(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) requireAtor(w http.ResponseWriter, r *http.Request) (assembleia.Ator, bool) {
	a, err := ator(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return assembleia.Ator{}, false
	}
	return a, true
}

func (h *Handler) requireID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := pathUUID(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return uuid.Nil, false
	}
	return id, true
}
