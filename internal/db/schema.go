package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema cria as tabelas das assembleias. Pode ser reaplicado.
const Schema = `
CREATE TABLE IF NOT EXISTS assembleias (
	id            UUID PRIMARY KEY,
	condominio_id UUID NOT NULL,
	titulo        TEXT NOT NULL,
	agendada_para TIMESTAMPTZ NOT NULL,
	status        TEXT NOT NULL DEFAULT 'scheduled'
		CHECK (status IN ('scheduled', 'in_progress', 'closed', 'cancelled')),
	topicos       TEXT[] NOT NULL DEFAULT '{}',
	edital_url    TEXT,
	ata_url       TEXT,
	criada_por    UUID NOT NULL,
	iniciada_em   TIMESTAMPTZ,
	encerrada_em  TIMESTAMPTZ,
	cancelada_em  TIMESTAMPTZ,
	criada_em     TIMESTAMPTZ NOT NULL DEFAULT now(),
	atualizada_em TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assembleias_condominio ON assembleias (condominio_id, agendada_para DESC);

CREATE TABLE IF NOT EXISTS pautas (
	id            UUID PRIMARY KEY,
	assembleia_id UUID NOT NULL REFERENCES assembleias (id) ON DELETE CASCADE,
	titulo        TEXT NOT NULL,
	descricao     TEXT NOT NULL DEFAULT '',
	ordem         INT NOT NULL DEFAULT 0,
	modo          TEXT NOT NULL DEFAULT 'open' CHECK (modo IN ('open', 'secret')),
	opcoes        TEXT[] NOT NULL CHECK (cardinality(opcoes) >= 2),
	status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'open', 'closed')),
	aberta_em     TIMESTAMPTZ,
	encerrada_em  TIMESTAMPTZ,
	criada_em     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pautas_assembleia ON pautas (assembleia_id, ordem, criada_em, id);

CREATE TABLE IF NOT EXISTS presencas (
	id            UUID PRIMARY KEY,
	assembleia_id UUID NOT NULL REFERENCES assembleias (id) ON DELETE CASCADE,
	eleitor_id    UUID NOT NULL,
	registrada_em TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT presencas_assembleia_eleitor_key UNIQUE (assembleia_id, eleitor_id)
);

CREATE TABLE IF NOT EXISTS votos (
	id            UUID PRIMARY KEY,
	pauta_id      UUID NOT NULL REFERENCES pautas (id) ON DELETE CASCADE,
	eleitor_id    UUID NOT NULL,
	escolha       TEXT NOT NULL,
	registrado_em TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT votos_pauta_eleitor_key UNIQUE (pauta_id, eleitor_id)
);
`

// Migrate aplica o schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("db: migrar: %w", err)
	}
	return nil
}
