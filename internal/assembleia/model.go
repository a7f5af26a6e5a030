package assembleia

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Papéis com permissão para administrar assembleias.
const (
	PapelSindico = "SINDICO"
	PapelAdmin   = "ADMIN"
)

// Assembleia representa uma reunião de condomínio com ciclo de vida próprio.
type Assembleia struct {
	ID           uuid.UUID        `json:"id"`
	CondominioID uuid.UUID        `json:"condominio_id"`
	Titulo       string           `json:"titulo"`
	AgendadaPara time.Time        `json:"agendada_para"`
	Status       StatusAssembleia `json:"status"`
	Topicos      []string         `json:"topicos"`
	EditalURL    *string          `json:"edital_url,omitempty"`
	AtaURL       *string          `json:"ata_url,omitempty"`
	CriadaPor    uuid.UUID        `json:"criada_por"`
	IniciadaEm   *time.Time       `json:"iniciada_em,omitempty"`
	EncerradaEm  *time.Time       `json:"encerrada_em,omitempty"`
	CanceladaEm  *time.Time       `json:"cancelada_em,omitempty"`
	CriadaEm     time.Time        `json:"criada_em"`
	AtualizadaEm time.Time        `json:"atualizada_em"`
}

// Pauta é um item votável dentro de uma assembleia.
type Pauta struct {
	ID           uuid.UUID   `json:"id"`
	AssembleiaID uuid.UUID   `json:"assembleia_id"`
	Titulo       string      `json:"titulo"`
	Descricao    string      `json:"descricao"`
	Ordem        int         `json:"ordem"`
	Modo         ModoVotacao `json:"modo"`
	Opcoes       []string    `json:"opcoes"`
	Status       StatusPauta `json:"status"`
	AbertaEm     *time.Time  `json:"aberta_em,omitempty"`
	EncerradaEm  *time.Time  `json:"encerrada_em,omitempty"`
	CriadaEm     time.Time   `json:"criada_em"`
}

// Presenca registra que um eleitor compareceu a uma assembleia.
type Presenca struct {
	ID           uuid.UUID `json:"id"`
	AssembleiaID uuid.UUID `json:"assembleia_id"`
	EleitorID    uuid.UUID `json:"eleitor_id"`
	RegistradaEm time.Time `json:"registrada_em"`
}

// Voto é a escolha única e imutável de um eleitor em uma pauta.
type Voto struct {
	ID           uuid.UUID `json:"id"`
	PautaID      uuid.UUID `json:"pauta_id"`
	EleitorID    uuid.UUID `json:"eleitor_id"`
	Escolha      string    `json:"escolha"`
	RegistradoEm time.Time `json:"registrado_em"`
}

// Ator identifica quem executa a operação.
type Ator struct {
	ID     uuid.UUID
	Papeis []string
}

// Admin indica se o ator pode disparar operações administrativas.
func (a Ator) Admin() bool {
	for _, papel := range a.Papeis {
		switch strings.ToUpper(strings.TrimSpace(papel)) {
		case PapelSindico, PapelAdmin:
			return true
		}
	}
	return false
}

// NovaAssembleiaInput encapsula campos para agendar uma assembleia.
type NovaAssembleiaInput struct {
	CondominioID uuid.UUID
	Titulo       string
	AgendadaPara time.Time
	Topicos      []string
	EditalURL    *string
}

// AtualizarAssembleiaInput permite editar dados enquanto agendada; nil mantém o valor.
type AtualizarAssembleiaInput struct {
	Titulo       *string
	AgendadaPara *time.Time
	Topicos      []string
	EditalURL    *string
}

// NovaPautaInput encapsula campos para criação de pauta.
type NovaPautaInput struct {
	Titulo    string
	Descricao string
	Ordem     int
	Modo      ModoVotacao
	Opcoes    []string
}

// AtualizarPautaInput permite editar pauta pendente; nil mantém o valor.
type AtualizarPautaInput struct {
	Titulo    *string
	Descricao *string
	Ordem     *int
	Opcoes    []string
}

// normalizeOpcoes remove espaços e rejeita listas com menos de duas opções ou repetidas.
func normalizeOpcoes(opcoes []string) ([]string, error) {
	out := make([]string, 0, len(opcoes))
	seen := make(map[string]struct{}, len(opcoes))
	for _, opcao := range opcoes {
		opcao = strings.TrimSpace(opcao)
		if opcao == "" {
			return nil, fmt.Errorf("%w: opção vazia", ErrValidation)
		}
		key := strings.ToLower(opcao)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: opção repetida %q", ErrValidation, opcao)
		}
		seen[key] = struct{}{}
		out = append(out, opcao)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: informe ao menos duas opções", ErrValidation)
	}
	return out, nil
}

func normalizeTopicos(topicos []string) []string {
	out := make([]string, 0, len(topicos))
	for _, t := range topicos {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// contemOpcao compara a escolha com a lista congelada da pauta.
func (p Pauta) contemOpcao(escolha string) bool {
	for _, opcao := range p.Opcoes {
		if opcao == escolha {
			return true
		}
	}
	return false
}
