package assembleia

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/condominio/internal/db"
)

const dbTimeout = 5 * time.Second

const (
	assembleiaCols = `a.id, a.condominio_id, a.titulo, a.agendada_para, a.status, a.topicos, a.edital_url, a.ata_url,
		a.criada_por, a.iniciada_em, a.encerrada_em, a.cancelada_em, a.criada_em, a.atualizada_em`
	pautaCols = `p.id, p.assembleia_id, p.titulo, p.descricao, p.ordem, p.modo, p.opcoes, p.status,
		p.aberta_em, p.encerrada_em, p.criada_em`
	presencaCols = `id, assembleia_id, eleitor_id, registrada_em`
	votoCols     = `id, pauta_id, eleitor_id, escolha, registrado_em`
)

// Repository implementa Store sobre Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

type assembleiaRow struct {
	a      Assembleia
	status string
}

func (r *assembleiaRow) dest() []any {
	return []any{&r.a.ID, &r.a.CondominioID, &r.a.Titulo, &r.a.AgendadaPara, &r.status, &r.a.Topicos,
		&r.a.EditalURL, &r.a.AtaURL, &r.a.CriadaPor, &r.a.IniciadaEm, &r.a.EncerradaEm, &r.a.CanceladaEm,
		&r.a.CriadaEm, &r.a.AtualizadaEm}
}

func (r *assembleiaRow) value() Assembleia {
	r.a.Status = StatusAssembleia(r.status)
	if r.a.Topicos == nil {
		r.a.Topicos = []string{}
	}
	return r.a
}

type pautaRow struct {
	p      Pauta
	modo   string
	status string
}

func (r *pautaRow) dest() []any {
	return []any{&r.p.ID, &r.p.AssembleiaID, &r.p.Titulo, &r.p.Descricao, &r.p.Ordem, &r.modo, &r.p.Opcoes,
		&r.status, &r.p.AbertaEm, &r.p.EncerradaEm, &r.p.CriadaEm}
}

func (r *pautaRow) value() Pauta {
	r.p.Modo = ModoVotacao(r.modo)
	r.p.Status = StatusPauta(r.status)
	return r.p
}

func scanAssembleia(row pgx.Row) (Assembleia, error) {
	var r assembleiaRow
	if err := row.Scan(r.dest()...); err != nil {
		return Assembleia{}, translate(err)
	}
	return r.value(), nil
}

func scanPauta(row pgx.Row) (Pauta, error) {
	var r pautaRow
	if err := row.Scan(r.dest()...); err != nil {
		return Pauta{}, translate(err)
	}
	return r.value(), nil
}

func scanPresenca(row pgx.Row) (Presenca, error) {
	var p Presenca
	if err := row.Scan(&p.ID, &p.AssembleiaID, &p.EleitorID, &p.RegistradaEm); err != nil {
		return Presenca{}, translate(err)
	}
	return p, nil
}

func scanVoto(row pgx.Row) (Voto, error) {
	var v Voto
	if err := row.Scan(&v.ID, &v.PautaID, &v.EleitorID, &v.Escolha, &v.RegistradoEm); err != nil {
		return Voto{}, translate(err)
	}
	return v, nil
}

// translate converte erros do driver nos erros do domínio.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateVote
	}
	return err
}

func topicosOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func (r *Repository) CreateAssembleia(ctx context.Context, a Assembleia) (Assembleia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO assembleias AS a (id, condominio_id, titulo, agendada_para, status, topicos, edital_url, ata_url,
			criada_por, criada_em, atualizada_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+assembleiaCols,
		a.ID, a.CondominioID, a.Titulo, a.AgendadaPara, string(a.Status), topicosOrEmpty(a.Topicos), a.EditalURL, a.AtaURL,
		a.CriadaPor, a.CriadaEm, a.AtualizadaEm)
	return scanAssembleia(row)
}

func (r *Repository) GetAssembleia(ctx context.Context, id uuid.UUID) (Assembleia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanAssembleia(r.pool.QueryRow(ctx, `SELECT `+assembleiaCols+` FROM assembleias a WHERE a.id = $1`, id))
}

func (r *Repository) ListAssembleias(ctx context.Context, condominioID uuid.UUID) ([]Assembleia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+assembleiaCols+`
		FROM assembleias a
		WHERE $1::uuid IS NULL OR a.condominio_id = $1
		ORDER BY a.agendada_para DESC, a.id
	`, nullableUUID(condominioID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assembleia
	for rows.Next() {
		a, err := scanAssembleia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateAssembleia(ctx context.Context, id uuid.UUID, fn func(*Assembleia) error) (Assembleia, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var out Assembleia
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		a, err := scanAssembleia(tx.QueryRow(ctx, `SELECT `+assembleiaCols+` FROM assembleias a WHERE a.id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := fn(&a); err != nil {
			return err
		}
		out, err = scanAssembleia(tx.QueryRow(ctx, `
			UPDATE assembleias AS a
			SET titulo = $2, agendada_para = $3, status = $4, topicos = $5, edital_url = $6, ata_url = $7,
				iniciada_em = $8, encerrada_em = $9, cancelada_em = $10, atualizada_em = $11
			WHERE a.id = $1
			RETURNING `+assembleiaCols,
			a.ID, a.Titulo, a.AgendadaPara, string(a.Status), topicosOrEmpty(a.Topicos), a.EditalURL, a.AtaURL,
			a.IniciadaEm, a.EncerradaEm, a.CanceladaEm, a.AtualizadaEm))
		return err
	})
	return out, err
}

func (r *Repository) DeleteAssembleia(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// pautas, presencas e votos caem por ON DELETE CASCADE
	tag, err := r.pool.Exec(ctx, `DELETE FROM assembleias WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreatePauta(ctx context.Context, p Pauta, validar func(Assembleia) error) (Pauta, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var out Pauta
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		a, err := scanAssembleia(tx.QueryRow(ctx, `SELECT `+assembleiaCols+` FROM assembleias a WHERE a.id = $1 FOR SHARE`, p.AssembleiaID))
		if err != nil {
			return err
		}
		if err := validar(a); err != nil {
			return err
		}
		out, err = scanPauta(tx.QueryRow(ctx, `
			INSERT INTO pautas AS p (id, assembleia_id, titulo, descricao, ordem, modo, opcoes, status, criada_em)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+pautaCols,
			p.ID, p.AssembleiaID, p.Titulo, p.Descricao, p.Ordem, string(p.Modo), p.Opcoes, string(p.Status), p.CriadaEm))
		return err
	})
	return out, err
}

func (r *Repository) GetPauta(ctx context.Context, id uuid.UUID) (Pauta, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanPauta(r.pool.QueryRow(ctx, `SELECT `+pautaCols+` FROM pautas p WHERE p.id = $1`, id))
}

func (r *Repository) ListPautas(ctx context.Context, assembleiaID uuid.UUID) ([]Pauta, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+pautaCols+`
		FROM pautas p
		WHERE p.assembleia_id = $1
		ORDER BY p.ordem, p.criada_em, p.id
	`, assembleiaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pauta
	for rows.Next() {
		p, err := scanPauta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// lockPauta trava a pauta para escrita e a assembleia para leitura.
func lockPauta(ctx context.Context, tx pgx.Tx, id uuid.UUID, modo string) (Pauta, Assembleia, error) {
	var pr pautaRow
	var ar assembleiaRow
	dest := append(pr.dest(), ar.dest()...)
	err := tx.QueryRow(ctx, `
		SELECT `+pautaCols+`, `+assembleiaCols+`
		FROM pautas p
		JOIN assembleias a ON a.id = p.assembleia_id
		WHERE p.id = $1
		`+modo, id).Scan(dest...)
	if err != nil {
		return Pauta{}, Assembleia{}, translate(err)
	}
	return pr.value(), ar.value(), nil
}

func (r *Repository) UpdatePauta(ctx context.Context, id uuid.UUID, fn func(*Pauta, Assembleia) error) (Pauta, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var out Pauta
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		p, a, err := lockPauta(ctx, tx, id, "FOR UPDATE OF p FOR SHARE OF a")
		if err != nil {
			return err
		}
		if err := fn(&p, a); err != nil {
			return err
		}
		out, err = scanPauta(tx.QueryRow(ctx, `
			UPDATE pautas AS p
			SET titulo = $2, descricao = $3, ordem = $4, opcoes = $5, status = $6, aberta_em = $7, encerrada_em = $8
			WHERE p.id = $1
			RETURNING `+pautaCols,
			p.ID, p.Titulo, p.Descricao, p.Ordem, p.Opcoes, string(p.Status), p.AbertaEm, p.EncerradaEm))
		return err
	})
	return out, err
}

func (r *Repository) DeletePauta(ctx context.Context, id uuid.UUID, validar func(Pauta) error) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		p, _, err := lockPauta(ctx, tx, id, "FOR UPDATE OF p")
		if err != nil {
			return err
		}
		if err := validar(p); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM pautas WHERE id = $1`, id)
		return err
	})
}

func (r *Repository) InsertPresenca(ctx context.Context, p Presenca, validar func(Assembleia) error) (Presenca, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		out    Presenca
		criada bool
	)
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		a, err := scanAssembleia(tx.QueryRow(ctx, `SELECT `+assembleiaCols+` FROM assembleias a WHERE a.id = $1 FOR SHARE`, p.AssembleiaID))
		if err != nil {
			return err
		}
		if err := validar(a); err != nil {
			return err
		}

		out, err = scanPresenca(tx.QueryRow(ctx, `
			INSERT INTO presencas (id, assembleia_id, eleitor_id, registrada_em)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (assembleia_id, eleitor_id) DO NOTHING
			RETURNING `+presencaCols,
			p.ID, p.AssembleiaID, p.EleitorID, p.RegistradaEm))
		if err == nil {
			criada = true
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		out, err = scanPresenca(tx.QueryRow(ctx, `
			SELECT `+presencaCols+` FROM presencas WHERE assembleia_id = $1 AND eleitor_id = $2
		`, p.AssembleiaID, p.EleitorID))
		return err
	})
	return out, criada, err
}

func (r *Repository) ListPresencas(ctx context.Context, assembleiaID uuid.UUID) ([]Presenca, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+presencaCols+` FROM presencas WHERE assembleia_id = $1 ORDER BY registrada_em, id
	`, assembleiaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Presenca
	for rows.Next() {
		p, err := scanPresenca(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) InsertVoto(ctx context.Context, v Voto, validar func(Pauta, Assembleia) error) (Voto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var out Voto
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		p, a, err := lockPauta(ctx, tx, v.PautaID, "FOR SHARE")
		if err != nil {
			return err
		}
		if err := validar(p, a); err != nil {
			return err
		}
		// votos_pauta_eleitor_key decide corridas entre tentativas simultâneas
		out, err = scanVoto(tx.QueryRow(ctx, `
			INSERT INTO votos (id, pauta_id, eleitor_id, escolha, registrado_em)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+votoCols,
			v.ID, v.PautaID, v.EleitorID, v.Escolha, v.RegistradoEm))
		return err
	})
	return out, err
}

func (r *Repository) GetVoto(ctx context.Context, pautaID, eleitorID uuid.UUID) (Voto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanVoto(r.pool.QueryRow(ctx, `
		SELECT `+votoCols+` FROM votos WHERE pauta_id = $1 AND eleitor_id = $2
	`, pautaID, eleitorID))
}

func (r *Repository) ListVotos(ctx context.Context, pautaID uuid.UUID) ([]Voto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+votoCols+` FROM votos WHERE pauta_id = $1 ORDER BY registrado_em, id
	`, pautaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Voto
	for rows.Next() {
		v, err := scanVoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
