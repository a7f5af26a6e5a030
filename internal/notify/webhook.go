package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier avisa um webhook compatível com Slack quando a assembleia muda
// de estado. Votos e mudanças de pauta são ignorados para não inundar o canal.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier devolve nil quando a URL é vazia.
func NewWebhookNotifier(url string) *WebhookNotifier {
	if url == "" {
		return nil
	}
	return &WebhookNotifier{url: url, client: &http.Client{Timeout: 5 * time.Second}}
}

func (n *WebhookNotifier) Notify(ctx context.Context, change Change) error {
	if n == nil {
		return errors.New("notify: webhook não configurado")
	}
	if change.Tipo != TipoAssembleiaStatus {
		return nil
	}

	body, err := json.Marshal(map[string]any{"text": formatWebhookText(change)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook respondeu %d", resp.StatusCode)
	}
	return nil
}

func formatWebhookText(change Change) string {
	return fmt.Sprintf(":ballot_box_with_ballot: assembleia %s mudou de estado em %s",
		change.AssembleiaID, change.Em.UTC().Format(time.RFC3339))
}

// Fanout entrega o aviso a todos os destinos; falhas são agregadas sem interromper os demais.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, change Change) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
