// Package sqlitestore guarda assembleias em SQLite via gorm. Serve para
// desenvolvimento local, a CLI e os testes; produção usa Postgres.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gestaozabele/condominio/internal/assembleia"
)

type assembleiaModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	CondominioID string `gorm:"index;size:36;not null"`
	Titulo       string `gorm:"not null"`
	AgendadaPara time.Time
	Status       string   `gorm:"size:16;not null"`
	Topicos      []string `gorm:"serializer:json"`
	EditalURL    *string
	AtaURL       *string
	CriadaPor    string `gorm:"size:36"`
	IniciadaEm   *time.Time
	EncerradaEm  *time.Time
	CanceladaEm  *time.Time
	CriadaEm     time.Time
	AtualizadaEm time.Time
}

func (assembleiaModel) TableName() string { return "assembleias" }

type pautaModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	AssembleiaID string `gorm:"index;size:36;not null"`
	Titulo       string `gorm:"not null"`
	Descricao    string
	Ordem        int
	Modo         string   `gorm:"size:16;not null"`
	Opcoes       []string `gorm:"serializer:json"`
	Status       string   `gorm:"size:16;not null"`
	AbertaEm     *time.Time
	EncerradaEm  *time.Time
	CriadaEm     time.Time
}

func (pautaModel) TableName() string { return "pautas" }

type presencaModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	AssembleiaID string `gorm:"uniqueIndex:uniq_presenca_eleitor,priority:1;size:36;not null"`
	EleitorID    string `gorm:"uniqueIndex:uniq_presenca_eleitor,priority:2;size:36;not null"`
	RegistradaEm time.Time
}

func (presencaModel) TableName() string { return "presencas" }

type votoModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	PautaID      string `gorm:"uniqueIndex:uniq_voto_eleitor,priority:1;size:36;not null"`
	EleitorID    string `gorm:"uniqueIndex:uniq_voto_eleitor,priority:2;size:36;not null"`
	Escolha      string `gorm:"not null"`
	RegistradoEm time.Time
}

func (votoModel) TableName() string { return "votos" }

// Store implementa assembleia.Store sobre SQLite.
type Store struct {
	db *gorm.DB
}

var _ assembleia.Store = (*Store)(nil)

// Open abre o banco e cria as tabelas. Um dsn vazio usa banco em memória.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: abrir: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite aceita um escritor por vez; uma conexão serializa as transações
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&assembleiaModel{}, &pautaModel{}, &presencaModel{}, &votoModel{}); err != nil {
		return nil, fmt.Errorf("sqlite: migrar: %w", err)
	}
	return &Store{db: db}, nil
}

// Close libera a conexão.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifica a conexão, usado por /ready.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return assembleia.ErrNotFound
	}
	return err
}

func toAssembleiaModel(a assembleia.Assembleia) assembleiaModel {
	return assembleiaModel{
		ID:           a.ID.String(),
		CondominioID: a.CondominioID.String(),
		Titulo:       a.Titulo,
		AgendadaPara: a.AgendadaPara,
		Status:       string(a.Status),
		Topicos:      a.Topicos,
		EditalURL:    a.EditalURL,
		AtaURL:       a.AtaURL,
		CriadaPor:    a.CriadaPor.String(),
		IniciadaEm:   a.IniciadaEm,
		EncerradaEm:  a.EncerradaEm,
		CanceladaEm:  a.CanceladaEm,
		CriadaEm:     a.CriadaEm,
		AtualizadaEm: a.AtualizadaEm,
	}
}

func (m assembleiaModel) domain() assembleia.Assembleia {
	topicos := m.Topicos
	if topicos == nil {
		topicos = []string{}
	}
	return assembleia.Assembleia{
		ID:           uuid.MustParse(m.ID),
		CondominioID: uuid.MustParse(m.CondominioID),
		Titulo:       m.Titulo,
		AgendadaPara: m.AgendadaPara.UTC(),
		Status:       assembleia.StatusAssembleia(m.Status),
		Topicos:      topicos,
		EditalURL:    m.EditalURL,
		AtaURL:       m.AtaURL,
		CriadaPor:    uuid.MustParse(m.CriadaPor),
		IniciadaEm:   utcPtr(m.IniciadaEm),
		EncerradaEm:  utcPtr(m.EncerradaEm),
		CanceladaEm:  utcPtr(m.CanceladaEm),
		CriadaEm:     m.CriadaEm.UTC(),
		AtualizadaEm: m.AtualizadaEm.UTC(),
	}
}

func toPautaModel(p assembleia.Pauta) pautaModel {
	return pautaModel{
		ID:           p.ID.String(),
		AssembleiaID: p.AssembleiaID.String(),
		Titulo:       p.Titulo,
		Descricao:    p.Descricao,
		Ordem:        p.Ordem,
		Modo:         string(p.Modo),
		Opcoes:       p.Opcoes,
		Status:       string(p.Status),
		AbertaEm:     p.AbertaEm,
		EncerradaEm:  p.EncerradaEm,
		CriadaEm:     p.CriadaEm,
	}
}

func (m pautaModel) domain() assembleia.Pauta {
	return assembleia.Pauta{
		ID:           uuid.MustParse(m.ID),
		AssembleiaID: uuid.MustParse(m.AssembleiaID),
		Titulo:       m.Titulo,
		Descricao:    m.Descricao,
		Ordem:        m.Ordem,
		Modo:         assembleia.ModoVotacao(m.Modo),
		Opcoes:       m.Opcoes,
		Status:       assembleia.StatusPauta(m.Status),
		AbertaEm:     utcPtr(m.AbertaEm),
		EncerradaEm:  utcPtr(m.EncerradaEm),
		CriadaEm:     m.CriadaEm.UTC(),
	}
}

func (m presencaModel) domain() assembleia.Presenca {
	return assembleia.Presenca{
		ID:           uuid.MustParse(m.ID),
		AssembleiaID: uuid.MustParse(m.AssembleiaID),
		EleitorID:    uuid.MustParse(m.EleitorID),
		RegistradaEm: m.RegistradaEm.UTC(),
	}
}

func (m votoModel) domain() assembleia.Voto {
	return assembleia.Voto{
		ID:           uuid.MustParse(m.ID),
		PautaID:      uuid.MustParse(m.PautaID),
		EleitorID:    uuid.MustParse(m.EleitorID),
		Escolha:      m.Escolha,
		RegistradoEm: m.RegistradoEm.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func getAssembleia(tx *gorm.DB, id string) (assembleia.Assembleia, error) {
	var m assembleiaModel
	if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
		return assembleia.Assembleia{}, translate(err)
	}
	return m.domain(), nil
}

func getPauta(tx *gorm.DB, id string) (assembleia.Pauta, error) {
	var m pautaModel
	if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
		return assembleia.Pauta{}, translate(err)
	}
	return m.domain(), nil
}

func (s *Store) CreateAssembleia(ctx context.Context, a assembleia.Assembleia) (assembleia.Assembleia, error) {
	m := toAssembleiaModel(a)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return assembleia.Assembleia{}, err
	}
	return m.domain(), nil
}

func (s *Store) GetAssembleia(ctx context.Context, id uuid.UUID) (assembleia.Assembleia, error) {
	return getAssembleia(s.db.WithContext(ctx), id.String())
}

func (s *Store) ListAssembleias(ctx context.Context, condominioID uuid.UUID) ([]assembleia.Assembleia, error) {
	q := s.db.WithContext(ctx).Order("agendada_para DESC").Order("id")
	if condominioID != uuid.Nil {
		q = q.Where("condominio_id = ?", condominioID.String())
	}
	var rows []assembleiaModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]assembleia.Assembleia, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.domain())
	}
	return out, nil
}

func (s *Store) UpdateAssembleia(ctx context.Context, id uuid.UUID, fn func(*assembleia.Assembleia) error) (assembleia.Assembleia, error) {
	var out assembleia.Assembleia
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := getAssembleia(tx, id.String())
		if err != nil {
			return err
		}
		if err := fn(&a); err != nil {
			return err
		}
		m := toAssembleiaModel(a)
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		out = m.domain()
		return nil
	})
	return out, err
}

func (s *Store) DeleteAssembleia(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getAssembleia(tx, id.String()); err != nil {
			return err
		}
		pautas := tx.Model(&pautaModel{}).Select("id").Where("assembleia_id = ?", id.String())
		if err := tx.Where("pauta_id IN (?)", pautas).Delete(&votoModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assembleia_id = ?", id.String()).Delete(&pautaModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assembleia_id = ?", id.String()).Delete(&presencaModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id.String()).Delete(&assembleiaModel{}).Error
	})
}

func (s *Store) CreatePauta(ctx context.Context, p assembleia.Pauta, validar func(assembleia.Assembleia) error) (assembleia.Pauta, error) {
	var out assembleia.Pauta
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := getAssembleia(tx, p.AssembleiaID.String())
		if err != nil {
			return err
		}
		if err := validar(a); err != nil {
			return err
		}
		m := toPautaModel(p)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		out = m.domain()
		return nil
	})
	return out, err
}

func (s *Store) GetPauta(ctx context.Context, id uuid.UUID) (assembleia.Pauta, error) {
	return getPauta(s.db.WithContext(ctx), id.String())
}

func (s *Store) ListPautas(ctx context.Context, assembleiaID uuid.UUID) ([]assembleia.Pauta, error) {
	var rows []pautaModel
	err := s.db.WithContext(ctx).
		Where("assembleia_id = ?", assembleiaID.String()).
		Order("ordem").Order("criada_em").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]assembleia.Pauta, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.domain())
	}
	return out, nil
}

func (s *Store) UpdatePauta(ctx context.Context, id uuid.UUID, fn func(*assembleia.Pauta, assembleia.Assembleia) error) (assembleia.Pauta, error) {
	var out assembleia.Pauta
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getPauta(tx, id.String())
		if err != nil {
			return err
		}
		a, err := getAssembleia(tx, p.AssembleiaID.String())
		if err != nil {
			return err
		}
		if err := fn(&p, a); err != nil {
			return err
		}
		m := toPautaModel(p)
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		out = m.domain()
		return nil
	})
	return out, err
}

func (s *Store) DeletePauta(ctx context.Context, id uuid.UUID, validar func(assembleia.Pauta) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getPauta(tx, id.String())
		if err != nil {
			return err
		}
		if err := validar(p); err != nil {
			return err
		}
		if err := tx.Where("pauta_id = ?", id.String()).Delete(&votoModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id.String()).Delete(&pautaModel{}).Error
	})
}

func (s *Store) InsertPresenca(ctx context.Context, p assembleia.Presenca, validar func(assembleia.Assembleia) error) (assembleia.Presenca, bool, error) {
	var (
		out    assembleia.Presenca
		criada bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := getAssembleia(tx, p.AssembleiaID.String())
		if err != nil {
			return err
		}
		if err := validar(a); err != nil {
			return err
		}

		m := presencaModel{
			ID:           p.ID.String(),
			AssembleiaID: p.AssembleiaID.String(),
			EleitorID:    p.EleitorID.String(),
			RegistradaEm: p.RegistradaEm,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			out = m.domain()
			criada = true
			return nil
		}

		// já registrada, possivelmente por outro processo no mesmo arquivo
		var existente presencaModel
		if err := tx.Where("assembleia_id = ? AND eleitor_id = ?", p.AssembleiaID.String(), p.EleitorID.String()).First(&existente).Error; err != nil {
			return translate(err)
		}
		out = existente.domain()
		return nil
	})
	return out, criada, err
}

func (s *Store) ListPresencas(ctx context.Context, assembleiaID uuid.UUID) ([]assembleia.Presenca, error) {
	var rows []presencaModel
	err := s.db.WithContext(ctx).
		Where("assembleia_id = ?", assembleiaID.String()).
		Order("registrada_em").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]assembleia.Presenca, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.domain())
	}
	return out, nil
}

func (s *Store) InsertVoto(ctx context.Context, v assembleia.Voto, validar func(assembleia.Pauta, assembleia.Assembleia) error) (assembleia.Voto, error) {
	var out assembleia.Voto
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getPauta(tx, v.PautaID.String())
		if err != nil {
			return err
		}
		a, err := getAssembleia(tx, p.AssembleiaID.String())
		if err != nil {
			return err
		}
		if err := validar(p, a); err != nil {
			return err
		}
		m := votoModel{
			ID:           v.ID.String(),
			PautaID:      v.PautaID.String(),
			EleitorID:    v.EleitorID.String(),
			Escolha:      v.Escolha,
			RegistradoEm: v.RegistradoEm,
		}
		if err := tx.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return assembleia.ErrDuplicateVote
			}
			return err
		}
		out = m.domain()
		return nil
	})
	return out, err
}

func (s *Store) GetVoto(ctx context.Context, pautaID, eleitorID uuid.UUID) (assembleia.Voto, error) {
	var m votoModel
	err := s.db.WithContext(ctx).
		Where("pauta_id = ? AND eleitor_id = ?", pautaID.String(), eleitorID.String()).
		First(&m).Error
	if err != nil {
		return assembleia.Voto{}, translate(err)
	}
	return m.domain(), nil
}

func (s *Store) ListVotos(ctx context.Context, pautaID uuid.UUID) ([]assembleia.Voto, error) {
	var rows []votoModel
	err := s.db.WithContext(ctx).
		Where("pauta_id = ?", pautaID.String()).
		Order("registrado_em").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]assembleia.Voto, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.domain())
	}
	return out, nil
}
