package assembleia

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/condominio/internal/db"
)

func TestTranslate(t *testing.T) {
	outro := errors.New("conexão recusada")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"sem linhas", pgx.ErrNoRows, ErrNotFound},
		{"sem linhas embrulhado", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"violação de unicidade", &pgconn.PgError{Code: "23505"}, ErrDuplicateVote},
		{"unicidade embrulhada", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrDuplicateVote},
		{"outra violação", &pgconn.PgError{Code: "23503"}, nil},
		{"erro qualquer", outro, outro},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.in)
			if tc.want == nil {
				assert.Same(t, tc.in, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

// Requer um Postgres descartável em TEST_DB_DSN.
func TestRepositoryInsertPresencaSemDuplicar(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN não definido")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))

	repo := NewRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)
	a, err := repo.CreateAssembleia(ctx, Assembleia{
		ID:           uuid.New(),
		CondominioID: uuid.New(),
		Titulo:       "AGE integração",
		AgendadaPara: now.Add(time.Hour),
		Status:       AssembleiaEmAndamento,
		CriadaPor:    uuid.New(),
		CriadaEm:     now,
		AtualizadaEm: now,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.DeleteAssembleia(context.Background(), a.ID) })

	eleitor := uuid.New()
	aceita := func(Assembleia) error { return nil }

	first, criada, err := repo.InsertPresenca(ctx, Presenca{ID: uuid.New(), AssembleiaID: a.ID, EleitorID: eleitor, RegistradaEm: now}, aceita)
	require.NoError(t, err)
	assert.True(t, criada)

	second, criada, err := repo.InsertPresenca(ctx, Presenca{ID: uuid.New(), AssembleiaID: a.ID, EleitorID: eleitor, RegistradaEm: now}, aceita)
	require.NoError(t, err)
	assert.False(t, criada)
	assert.Equal(t, first.ID, second.ID)

	presencas, err := repo.ListPresencas(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, presencas, 1)
}
