package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/gestaozabele/condominio/internal/assembleia"
)

type pautaPayload struct {
	Titulo    string                 `json:"titulo"`
	Descricao string                 `json:"descricao"`
	Ordem     int                    `json:"ordem"`
	Modo      assembleia.ModoVotacao `json:"modo"`
	Opcoes    []string               `json:"opcoes"`
}

type pautaUpdatePayload struct {
	Titulo    *string  `json:"titulo"`
	Descricao *string  `json:"descricao"`
	Ordem     *int     `json:"ordem"`
	Opcoes    []string `json:"opcoes"`
}

type votoPayload struct {
	Escolha string `json:"escolha"`
}

func (h *Handler) CreatePauta(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	assembleiaID, ok := h.requireID(w, r)
	if !ok {
		return
	}

	var payload pautaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	p, err := h.assembleias.CriarPauta(r.Context(), a, assembleiaID, assembleia.NovaPautaInput{
		Titulo:    payload.Titulo,
		Descricao: payload.Descricao,
		Ordem:     payload.Ordem,
		Modo:      payload.Modo,
		Opcoes:    payload.Opcoes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) GetPauta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	p, err := h.assembleias.GetPauta(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdatePauta(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	var payload pautaUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	p, err := h.assembleias.AtualizarPauta(r.Context(), a, id, assembleia.AtualizarPautaInput{
		Titulo:    payload.Titulo,
		Descricao: payload.Descricao,
		Ordem:     payload.Ordem,
		Opcoes:    payload.Opcoes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePauta(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.assembleias.ExcluirPauta(r.Context(), a, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AbrirPauta(w http.ResponseWriter, r *http.Request) {
	h.transicionarPauta(w, r, h.assembleias.AbrirPauta)
}

func (h *Handler) EncerrarPauta(w http.ResponseWriter, r *http.Request) {
	h.transicionarPauta(w, r, h.assembleias.EncerrarPauta)
}

type transicaoPauta func(ctx context.Context, ator assembleia.Ator, id uuid.UUID) (assembleia.Pauta, error)

func (h *Handler) transicionarPauta(w http.ResponseWriter, r *http.Request, fn transicaoPauta) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	p, err := fn(r.Context(), a, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// RegistrarVoto grava o voto do autor da requisição. Repetição responde 409
// DUPLICATE_VOTE e o cliente consulta /meu-voto para exibir o voto existente.
func (h *Handler) RegistrarVoto(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	var payload votoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	v, err := h.assembleias.RegistrarVoto(r.Context(), id, a.ID, payload.Escolha)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) MeuVoto(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	v, err := h.assembleias.MeuVoto(r.Context(), id, a.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) ListVotos(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	items, err := h.assembleias.ListVotos(r.Context(), a, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *Handler) ApuracaoPauta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	res, err := h.assembleias.Apuracao(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// ApuracaoAuditoria ignora o cache e vale também para assembleias canceladas.
func (h *Handler) ApuracaoAuditoria(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	res, err := h.assembleias.ApuracaoAuditoria(r.Context(), a, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
