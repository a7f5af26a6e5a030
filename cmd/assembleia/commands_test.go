package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/condominio/internal/assembleia"
	"github.com/gestaozabele/condominio/internal/assembleia/sqlitestore"
	"github.com/gestaozabele/condominio/internal/auth"
)

const segredoTeste = "segredo-de-teste-com-32-caracteres!"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// usarSQLite aponta a CLI para um arquivo novo e devolve o DSN.
func usarSQLite(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "condominio.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dsn)
	return dsn
}

func assembleiaEncerrada(t *testing.T, dsn string) assembleia.Assembleia {
	t.Helper()
	ctx := context.Background()
	store, err := sqlitestore.Open(dsn)
	require.NoError(t, err)
	defer store.Close()

	sindico := assembleia.Ator{ID: uuid.New(), Papeis: []string{assembleia.PapelSindico}}
	svc := assembleia.NewService(store)
	a, err := svc.CriarAssembleia(ctx, sindico, assembleia.NovaAssembleiaInput{
		CondominioID: uuid.New(),
		Titulo:       "AGO Bloco B",
		AgendadaPara: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	p, err := svc.CriarPauta(ctx, sindico, a.ID, assembleia.NovaPautaInput{
		Titulo: "Troca do portão", Ordem: 1, Opcoes: []string{"Sim", "Não"},
	})
	require.NoError(t, err)
	_, err = svc.IniciarAssembleia(ctx, sindico, a.ID)
	require.NoError(t, err)
	_, err = svc.AbrirPauta(ctx, sindico, p.ID)
	require.NoError(t, err)
	_, err = svc.RegistrarVoto(ctx, p.ID, uuid.New(), "Sim")
	require.NoError(t, err)
	a, err = svc.EncerrarAssembleia(ctx, sindico, a.ID)
	require.NoError(t, err)
	return a
}

func TestExportGravaPDFNoDiretorio(t *testing.T) {
	dsn := usarSQLite(t)
	a := assembleiaEncerrada(t, dsn)
	dir := t.TempDir()

	_, err := run(t, "export", a.ID.String(), "-o", dir)
	require.NoError(t, err)

	arquivos, err := filepath.Glob(filepath.Join(dir, "votacao-*.pdf"))
	require.NoError(t, err)
	require.Len(t, arquivos, 1)
	data, err := os.ReadFile(arquivos[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportGravaPDFNoArquivo(t *testing.T) {
	dsn := usarSQLite(t)
	a := assembleiaEncerrada(t, dsn)
	path := filepath.Join(t.TempDir(), "resultado.pdf")

	_, err := run(t, "export", a.ID.String(), "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportErros(t *testing.T) {
	usarSQLite(t)

	_, err := run(t, "export", "nao-e-uuid")
	assert.ErrorContains(t, err, "id inválido")

	_, err = run(t, "export", uuid.NewString(), "-o", t.TempDir())
	assert.ErrorIs(t, err, assembleia.ErrNotFound)

	_, err = run(t, "export")
	assert.Error(t, err)
}

func TestListMostraAssembleias(t *testing.T) {
	dsn := usarSQLite(t)
	a := assembleiaEncerrada(t, dsn)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, a.ID.String())
	assert.Contains(t, out, "AGO Bloco B")

	out, err = run(t, "list", "--condominio", uuid.NewString())
	require.NoError(t, err)
	assert.NotContains(t, out, a.ID.String())
}

func TestTokenEmiteJWTValido(t *testing.T) {
	t.Setenv("JWT_SECRET", segredoTeste)
	sub := uuid.New()

	out, err := run(t, "token", "--sub", sub.String(), "--roles", "sindico, morador", "--ttl", "5m")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager(segredoTeste, time.Minute).ParseAndValidate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, sub.String(), claims.Subject)
	assert.Equal(t, []string{"SINDICO", "MORADOR"}, claims.Roles)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenExigeSegredo(t *testing.T) {
	t.Setenv("JWT_SECRET", "curto")

	_, err := run(t, "token")
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", segredoTeste)
	_, err = run(t, "token", "--sub", "x")
	assert.ErrorContains(t, err, "--sub inválido")
}
