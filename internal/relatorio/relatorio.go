// Package relatorio monta o resultado final de uma assembleia encerrada e o
// renderiza como PDF.
package relatorio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/condominio/internal/assembleia"
	"github.com/gestaozabele/condominio/internal/util"
)

// Item é uma pauta com sua apuração.
type Item struct {
	Pauta    assembleia.Pauta
	Apuracao assembleia.Apuracao
}

// Relatorio reúne tudo que o documento exibe.
type Relatorio struct {
	Assembleia assembleia.Assembleia
	Itens      []Item
	GeradoEm   time.Time
}

// Exporter lê o estado persistido; nunca escreve.
type Exporter struct {
	store assembleia.Store
	now   func() time.Time
}

// NewExporter cria o exportador.
func NewExporter(store assembleia.Store) *Exporter {
	return &Exporter{store: store, now: time.Now}
}

// Export monta o relatório de uma assembleia encerrada, com as pautas na ordem da assembleia.
func (e *Exporter) Export(ctx context.Context, assembleiaID uuid.UUID) (Relatorio, error) {
	a, err := e.store.GetAssembleia(ctx, assembleiaID)
	if err != nil {
		return Relatorio{}, err
	}
	if a.Status != assembleia.AssembleiaEncerrada {
		return Relatorio{}, fmt.Errorf("%w: relatório exige assembleia encerrada (atual %s)", assembleia.ErrInvalidState, a.Status)
	}

	pautas, err := e.store.ListPautas(ctx, a.ID)
	if err != nil {
		return Relatorio{}, err
	}

	r := Relatorio{Assembleia: a, Itens: make([]Item, 0, len(pautas)), GeradoEm: e.now().UTC()}
	for _, p := range pautas {
		votos, err := e.store.ListVotos(ctx, p.ID)
		if err != nil {
			return Relatorio{}, fmt.Errorf("relatorio: votos da pauta %s: %w", p.ID, err)
		}
		r.Itens = append(r.Itens, Item{Pauta: p, Apuracao: assembleia.Apurar(p, votos)})
	}
	return r, nil
}

// PDF exporta e renderiza em uma chamada, devolvendo também o nome do arquivo.
func (e *Exporter) PDF(ctx context.Context, assembleiaID uuid.UUID) ([]byte, string, error) {
	r, err := e.Export(ctx, assembleiaID)
	if err != nil {
		return nil, "", err
	}
	data, err := RenderPDF(r)
	if err != nil {
		return nil, "", err
	}
	return data, NomeArquivo(r), nil
}

// NomeArquivo segue o padrão votacao-<titulo>-<AAAA-MM-DD>.pdf.
func NomeArquivo(r Relatorio) string {
	slug := util.Slugify(r.Assembleia.Titulo)
	if slug == "" {
		slug = "assembleia"
	}
	return fmt.Sprintf("votacao-%s-%s.pdf", slug, r.GeradoEm.Format("2006-01-02"))
}
