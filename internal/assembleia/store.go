package assembleia

import (
	"context"

	"github.com/google/uuid"
)

// Store persiste assembleias, pautas, presenças e votos.
//
// As funções de validação recebidas são executadas dentro da mesma
// transação da escrita, com as linhas envolvidas travadas. A unicidade de
// (pauta, eleitor) e (assembleia, eleitor) é garantida pelo armazenamento.
type Store interface {
	CreateAssembleia(ctx context.Context, a Assembleia) (Assembleia, error)
	GetAssembleia(ctx context.Context, id uuid.UUID) (Assembleia, error)
	// ListAssembleias lista por condomínio; uuid.Nil lista todas.
	ListAssembleias(ctx context.Context, condominioID uuid.UUID) ([]Assembleia, error)
	UpdateAssembleia(ctx context.Context, id uuid.UUID, fn func(*Assembleia) error) (Assembleia, error)
	// DeleteAssembleia remove a assembleia com pautas, presenças e votos.
	DeleteAssembleia(ctx context.Context, id uuid.UUID) error

	CreatePauta(ctx context.Context, p Pauta, validar func(Assembleia) error) (Pauta, error)
	GetPauta(ctx context.Context, id uuid.UUID) (Pauta, error)
	// ListPautas ordena por ordem, data de criação e id.
	ListPautas(ctx context.Context, assembleiaID uuid.UUID) ([]Pauta, error)
	UpdatePauta(ctx context.Context, id uuid.UUID, fn func(*Pauta, Assembleia) error) (Pauta, error)
	DeletePauta(ctx context.Context, id uuid.UUID, validar func(Pauta) error) error

	// InsertPresenca devolve o registro existente e false quando o eleitor já estava presente.
	InsertPresenca(ctx context.Context, p Presenca, validar func(Assembleia) error) (Presenca, bool, error)
	ListPresencas(ctx context.Context, assembleiaID uuid.UUID) ([]Presenca, error)

	// InsertVoto devolve ErrDuplicateVote quando já existe voto para (pauta, eleitor).
	InsertVoto(ctx context.Context, v Voto, validar func(Pauta, Assembleia) error) (Voto, error)
	GetVoto(ctx context.Context, pautaID, eleitorID uuid.UUID) (Voto, error)
	ListVotos(ctx context.Context, pautaID uuid.UUID) ([]Voto, error)
}
