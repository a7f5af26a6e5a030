package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tipo identifica o que mudou. O aviso serve só para o cliente reler o estado.
type Tipo string

const (
	TipoAssembleiaStatus Tipo = "assembleia.status"
	TipoPautaStatus      Tipo = "pauta.status"
	TipoVoto             Tipo = "pauta.voto"
)

// Change é o sinal publicado para clientes conectados à assembleia.
type Change struct {
	Tipo         Tipo       `json:"tipo"`
	AssembleiaID uuid.UUID  `json:"assembleia_id"`
	PautaID      *uuid.UUID `json:"pauta_id,omitempty"`
	Em           time.Time  `json:"em"`
}

// Notifier publica avisos de mudança; entrega é no máximo uma vez e sem garantia.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

// Subscriber entrega avisos de uma assembleia até o cancelamento do contexto.
type Subscriber interface {
	Subscribe(ctx context.Context, assembleiaID uuid.UUID) (<-chan Change, error)
}

// Noop descarta avisos.
type Noop struct{}

// Notify não faz nada.
func (Noop) Notify(context.Context, Change) error { return nil }
