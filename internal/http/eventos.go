package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EventosAssembleia mantém um stream SSE com os avisos de mudança da assembleia.
// Cada evento só indica o que mudou; o cliente relê o estado pela API.
func (h *Handler) EventosAssembleia(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if _, err := h.assembleias.GetAssembleia(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if h.eventos == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "eventos indisponíveis", nil)
		return
	}

	ctx := r.Context()
	changes, err := h.eventos.Subscribe(ctx, id)
	if err != nil {
		h.logger.Error().Err(err).Str("assembleia_id", id.String()).Msg("eventos: falha ao assinar")
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "eventos indisponíveis", nil)
		return
	}

	rc := http.NewResponseController(w)
	// stream longo: remove o deadline de escrita do servidor
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": conectado\n\n"); err != nil {
		return
	}
	_ = rc.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.shutdown:
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Tipo, data); err != nil {
				return
			}
			_ = rc.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
