package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gestaozabele/condominio/internal/storage"
)

// DownloadRelatorio gera o PDF de resultados de uma assembleia encerrada.
func (h *Handler) DownloadRelatorio(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	data, nome, err := h.relatorios.PDF(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PublicarRelatorio envia o PDF ao armazenamento e grava a URL como ata.
func (h *Handler) PublicarRelatorio(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireAtor(w, r)
	if !ok {
		return
	}
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	data, nome, err := h.relatorios.PDF(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res, err := h.storage.Upload(r.Context(), storage.UploadInput{
		Key:          storage.ChaveAta(id, nome),
		Body:         data,
		ContentType:  "application/pdf",
		CacheControl: "public, max-age=31536000, immutable",
	})
	if errors.Is(err, storage.ErrNotConfigured) {
		WriteError(w, http.StatusServiceUnavailable, "STORAGE", "armazenamento não configurado", nil)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("assembleia_id", id.String()).Msg("relatorio: falha no upload")
		WriteError(w, http.StatusBadGateway, "STORAGE", "falha ao publicar relatório", nil)
		return
	}

	updated, err := h.assembleias.RegistrarAta(r.Context(), a, id, res.URL)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"assembleia": updated, "url": res.URL, "arquivo": nome})
}
