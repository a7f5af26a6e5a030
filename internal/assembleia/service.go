package assembleia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/condominio/internal/metrics"
	"github.com/gestaozabele/condominio/internal/notify"
)

const defaultCacheTTL = 5 * time.Second

// Service reúne as máquinas de estado, o registro de presença, a urna e a apuração.
type Service struct {
	store    Store
	notifier notify.Notifier
	cache    *redis.Client
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// Option ajusta dependências opcionais do serviço.
type Option func(*Service)

// WithNotifier define o canal de avisos de mudança.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithCache habilita cache curto da apuração ao vivo.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = client
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics registra contadores de votos, presenças e transições.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger substitui o logger do componente.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock substitui o relógio (testes).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService cria o serviço sobre o armazenamento informado.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notify.Noop{},
		cacheTTL: defaultCacheTTL,
		logger:   log.With().Str("component", "assembleia").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store expõe o armazenamento para leitores como o exportador de relatórios.
func (s *Service) Store() Store {
	return s.store
}

func requireAdmin(ator Ator) error {
	if !ator.Admin() {
		return ErrForbidden
	}
	return nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// CriarAssembleia agenda uma nova assembleia.
func (s *Service) CriarAssembleia(ctx context.Context, ator Ator, input NovaAssembleiaInput) (Assembleia, error) {
	if err := requireAdmin(ator); err != nil {
		return Assembleia{}, err
	}
	titulo := strings.TrimSpace(input.Titulo)
	if titulo == "" {
		return Assembleia{}, fmt.Errorf("%w: título obrigatório", ErrValidation)
	}
	if input.CondominioID == uuid.Nil {
		return Assembleia{}, fmt.Errorf("%w: condomínio obrigatório", ErrValidation)
	}
	if input.AgendadaPara.IsZero() {
		return Assembleia{}, fmt.Errorf("%w: data da assembleia obrigatória", ErrValidation)
	}

	now := s.timestamp()
	return s.store.CreateAssembleia(ctx, Assembleia{
		ID:           uuid.New(),
		CondominioID: input.CondominioID,
		Titulo:       titulo,
		AgendadaPara: input.AgendadaPara.UTC(),
		Status:       AssembleiaAgendada,
		Topicos:      normalizeTopicos(input.Topicos),
		EditalURL:    input.EditalURL,
		CriadaPor:    ator.ID,
		CriadaEm:     now,
		AtualizadaEm: now,
	})
}

// GetAssembleia recupera uma assembleia.
func (s *Service) GetAssembleia(ctx context.Context, id uuid.UUID) (Assembleia, error) {
	return s.store.GetAssembleia(ctx, id)
}

// ListAssembleias lista assembleias de um condomínio.
func (s *Service) ListAssembleias(ctx context.Context, condominioID uuid.UUID) ([]Assembleia, error) {
	return s.store.ListAssembleias(ctx, condominioID)
}

// AtualizarAssembleia edita dados de uma assembleia ainda agendada.
func (s *Service) AtualizarAssembleia(ctx context.Context, ator Ator, id uuid.UUID, input AtualizarAssembleiaInput) (Assembleia, error) {
	if err := requireAdmin(ator); err != nil {
		return Assembleia{}, err
	}
	if input.Titulo != nil && strings.TrimSpace(*input.Titulo) == "" {
		return Assembleia{}, fmt.Errorf("%w: título obrigatório", ErrValidation)
	}

	return s.store.UpdateAssembleia(ctx, id, func(a *Assembleia) error {
		if a.Status != AssembleiaAgendada {
			return fmt.Errorf("%w: assembleia %s", ErrInvalidState, a.Status)
		}
		if input.Titulo != nil {
			a.Titulo = strings.TrimSpace(*input.Titulo)
		}
		if input.AgendadaPara != nil {
			a.AgendadaPara = input.AgendadaPara.UTC()
		}
		if input.Topicos != nil {
			a.Topicos = normalizeTopicos(input.Topicos)
		}
		if input.EditalURL != nil {
			a.EditalURL = input.EditalURL
		}
		a.AtualizadaEm = s.timestamp()
		return nil
	})
}

// RegistrarAta guarda a referência do documento de ata gerado.
func (s *Service) RegistrarAta(ctx context.Context, ator Ator, id uuid.UUID, url string) (Assembleia, error) {
	if err := requireAdmin(ator); err != nil {
		return Assembleia{}, err
	}
	return s.store.UpdateAssembleia(ctx, id, func(a *Assembleia) error {
		a.AtaURL = &url
		a.AtualizadaEm = s.timestamp()
		return nil
	})
}

// ExcluirAssembleia remove a assembleia em qualquer estado, em cascata.
func (s *Service) ExcluirAssembleia(ctx context.Context, ator Ator, id uuid.UUID) error {
	if err := requireAdmin(ator); err != nil {
		return err
	}
	pautas, err := s.store.ListPautas(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAssembleia(ctx, id); err != nil {
		return err
	}
	for _, p := range pautas {
		s.invalidateApuracao(ctx, p.ID)
	}
	return nil
}

// IniciarAssembleia move scheduled -> in_progress.
func (s *Service) IniciarAssembleia(ctx context.Context, ator Ator, id uuid.UUID) (Assembleia, error) {
	return s.transicionarAssembleia(ctx, ator, id, AssembleiaEmAndamento)
}

// EncerrarAssembleia move in_progress -> closed. Pautas ainda abertas ficam bloqueadas para voto.
func (s *Service) EncerrarAssembleia(ctx context.Context, ator Ator, id uuid.UUID) (Assembleia, error) {
	return s.transicionarAssembleia(ctx, ator, id, AssembleiaEncerrada)
}

// CancelarAssembleia move scheduled|in_progress -> cancelled. Votos existentes são mantidos.
func (s *Service) CancelarAssembleia(ctx context.Context, ator Ator, id uuid.UUID) (Assembleia, error) {
	return s.transicionarAssembleia(ctx, ator, id, AssembleiaCancelada)
}

func (s *Service) transicionarAssembleia(ctx context.Context, ator Ator, id uuid.UUID, to StatusAssembleia) (Assembleia, error) {
	if err := requireAdmin(ator); err != nil {
		return Assembleia{}, err
	}

	a, err := s.store.UpdateAssembleia(ctx, id, func(a *Assembleia) error {
		if !a.Status.CanTransition(to) {
			return fmt.Errorf("%w: assembleia %s não pode ir para %s", ErrInvalidState, a.Status, to)
		}
		now := s.timestamp()
		a.Status = to
		a.AtualizadaEm = now
		switch to {
		case AssembleiaEmAndamento:
			a.IniciadaEm = &now
		case AssembleiaEncerrada:
			a.EncerradaEm = &now
		case AssembleiaCancelada:
			a.CanceladaEm = &now
		}
		return nil
	})
	if err != nil {
		return Assembleia{}, err
	}

	if to == AssembleiaCancelada {
		s.invalidateAssembleia(ctx, id)
	}
	s.metrics.Transicao("assembleia", string(to))
	s.logger.Info().Str("assembleia_id", id.String()).Str("status", string(to)).Str("ator", ator.ID.String()).Msg("assembleia: transição")
	s.notify(ctx, notify.Change{Tipo: notify.TipoAssembleiaStatus, AssembleiaID: id})
	return a, nil
}

// CriarPauta adiciona uma pauta pendente a uma assembleia não finalizada.
func (s *Service) CriarPauta(ctx context.Context, ator Ator, assembleiaID uuid.UUID, input NovaPautaInput) (Pauta, error) {
	if err := requireAdmin(ator); err != nil {
		return Pauta{}, err
	}
	titulo := strings.TrimSpace(input.Titulo)
	if titulo == "" {
		return Pauta{}, fmt.Errorf("%w: título obrigatório", ErrValidation)
	}
	opcoes, err := normalizeOpcoes(input.Opcoes)
	if err != nil {
		return Pauta{}, err
	}
	modo := input.Modo
	if modo == "" {
		modo = VotacaoAberta
	}
	if !modo.Valid() {
		return Pauta{}, fmt.Errorf("%w: modo de votação %q", ErrValidation, modo)
	}

	return s.store.CreatePauta(ctx, Pauta{
		ID:           uuid.New(),
		AssembleiaID: assembleiaID,
		Titulo:       titulo,
		Descricao:    strings.TrimSpace(input.Descricao),
		Ordem:        input.Ordem,
		Modo:         modo,
		Opcoes:       opcoes,
		Status:       PautaPendente,
		CriadaEm:     s.timestamp(),
	}, func(a Assembleia) error {
		if a.Status.Terminal() {
			return fmt.Errorf("%w: assembleia %s", ErrInvalidState, a.Status)
		}
		return nil
	})
}

// GetPauta recupera uma pauta.
func (s *Service) GetPauta(ctx context.Context, id uuid.UUID) (Pauta, error) {
	return s.store.GetPauta(ctx, id)
}

// ListPautas lista pautas de uma assembleia em ordem.
func (s *Service) ListPautas(ctx context.Context, assembleiaID uuid.UUID) ([]Pauta, error) {
	if _, err := s.store.GetAssembleia(ctx, assembleiaID); err != nil {
		return nil, err
	}
	return s.store.ListPautas(ctx, assembleiaID)
}

// AtualizarPauta edita uma pauta ainda pendente.
func (s *Service) AtualizarPauta(ctx context.Context, ator Ator, id uuid.UUID, input AtualizarPautaInput) (Pauta, error) {
	if err := requireAdmin(ator); err != nil {
		return Pauta{}, err
	}
	if input.Titulo != nil && strings.TrimSpace(*input.Titulo) == "" {
		return Pauta{}, fmt.Errorf("%w: título obrigatório", ErrValidation)
	}
	var opcoes []string
	if input.Opcoes != nil {
		var err error
		if opcoes, err = normalizeOpcoes(input.Opcoes); err != nil {
			return Pauta{}, err
		}
	}

	return s.store.UpdatePauta(ctx, id, func(p *Pauta, _ Assembleia) error {
		if p.Status != PautaPendente {
			return fmt.Errorf("%w: pauta %s", ErrInvalidState, p.Status)
		}
		if input.Titulo != nil {
			p.Titulo = strings.TrimSpace(*input.Titulo)
		}
		if input.Descricao != nil {
			p.Descricao = strings.TrimSpace(*input.Descricao)
		}
		if input.Ordem != nil {
			p.Ordem = *input.Ordem
		}
		if opcoes != nil {
			p.Opcoes = opcoes
		}
		return nil
	})
}

// ExcluirPauta remove uma pauta pendente.
func (s *Service) ExcluirPauta(ctx context.Context, ator Ator, id uuid.UUID) error {
	if err := requireAdmin(ator); err != nil {
		return err
	}
	return s.store.DeletePauta(ctx, id, func(p Pauta) error {
		if p.Status != PautaPendente {
			return fmt.Errorf("%w: pauta %s", ErrInvalidState, p.Status)
		}
		return nil
	})
}

// AbrirPauta move pending -> open, exigindo assembleia em andamento.
func (s *Service) AbrirPauta(ctx context.Context, ator Ator, id uuid.UUID) (Pauta, error) {
	return s.transicionarPauta(ctx, ator, id, PautaAberta)
}

// EncerrarPauta move open -> closed.
func (s *Service) EncerrarPauta(ctx context.Context, ator Ator, id uuid.UUID) (Pauta, error) {
	return s.transicionarPauta(ctx, ator, id, PautaEncerrada)
}

func (s *Service) transicionarPauta(ctx context.Context, ator Ator, id uuid.UUID, to StatusPauta) (Pauta, error) {
	if err := requireAdmin(ator); err != nil {
		return Pauta{}, err
	}

	p, err := s.store.UpdatePauta(ctx, id, func(p *Pauta, a Assembleia) error {
		if !p.Status.CanTransition(to) {
			return fmt.Errorf("%w: pauta %s não pode ir para %s", ErrInvalidState, p.Status, to)
		}
		if to == PautaAberta && a.Status != AssembleiaEmAndamento {
			return fmt.Errorf("%w: assembleia %s", ErrInvalidState, a.Status)
		}
		now := s.timestamp()
		p.Status = to
		switch to {
		case PautaAberta:
			p.AbertaEm = &now
		case PautaEncerrada:
			p.EncerradaEm = &now
		}
		return nil
	})
	if err != nil {
		return Pauta{}, err
	}

	s.invalidateApuracao(ctx, p.ID)
	s.metrics.Transicao("pauta", string(to))
	s.logger.Info().Str("pauta_id", id.String()).Str("status", string(to)).Str("ator", ator.ID.String()).Msg("pauta: transição")
	pautaID := p.ID
	s.notify(ctx, notify.Change{Tipo: notify.TipoPautaStatus, AssembleiaID: p.AssembleiaID, PautaID: &pautaID})
	return p, nil
}

// RegistrarPresenca grava a presença do eleitor; repetir a chamada devolve o registro existente.
func (s *Service) RegistrarPresenca(ctx context.Context, assembleiaID, eleitorID uuid.UUID) (Presenca, error) {
	if eleitorID == uuid.Nil {
		return Presenca{}, fmt.Errorf("%w: eleitor obrigatório", ErrValidation)
	}

	p, criada, err := s.store.InsertPresenca(ctx, Presenca{
		ID:           uuid.New(),
		AssembleiaID: assembleiaID,
		EleitorID:    eleitorID,
		RegistradaEm: s.timestamp(),
	}, func(a Assembleia) error {
		if a.Status != AssembleiaEmAndamento {
			return fmt.Errorf("%w: assembleia %s", ErrInvalidState, a.Status)
		}
		return nil
	})
	if err != nil {
		return Presenca{}, err
	}
	if criada {
		s.metrics.PresencaRegistrada()
	}
	return p, nil
}

// ListPresencas lista presenças (admin).
func (s *Service) ListPresencas(ctx context.Context, ator Ator, assembleiaID uuid.UUID) ([]Presenca, error) {
	if err := requireAdmin(ator); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAssembleia(ctx, assembleiaID); err != nil {
		return nil, err
	}
	return s.store.ListPresencas(ctx, assembleiaID)
}

// RegistrarVoto grava a escolha do eleitor. Uma segunda tentativa para a mesma
// pauta falha com ErrDuplicateVote, que o chamador deve tratar como "já registrado".
func (s *Service) RegistrarVoto(ctx context.Context, pautaID, eleitorID uuid.UUID, escolha string) (Voto, error) {
	if eleitorID == uuid.Nil {
		return Voto{}, fmt.Errorf("%w: eleitor obrigatório", ErrValidation)
	}
	escolha = strings.TrimSpace(escolha)

	var assembleiaID uuid.UUID
	v, err := s.store.InsertVoto(ctx, Voto{
		ID:           uuid.New(),
		PautaID:      pautaID,
		EleitorID:    eleitorID,
		Escolha:      escolha,
		RegistradoEm: s.timestamp(),
	}, func(p Pauta, a Assembleia) error {
		assembleiaID = a.ID
		if p.Status != PautaAberta {
			return fmt.Errorf("%w: pauta %s", ErrInvalidState, p.Status)
		}
		if a.Status != AssembleiaEmAndamento {
			return fmt.Errorf("%w: assembleia %s", ErrInvalidState, a.Status)
		}
		if !p.contemOpcao(escolha) {
			return fmt.Errorf("%w: %q", ErrInvalidChoice, escolha)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateVote) {
			s.metrics.VotoDuplicado()
		}
		return Voto{}, err
	}

	s.metrics.VotoRegistrado()
	s.invalidateApuracao(ctx, pautaID)
	s.notify(ctx, notify.Change{Tipo: notify.TipoVoto, AssembleiaID: assembleiaID, PautaID: &pautaID})
	return v, nil
}

// MeuVoto devolve o voto do eleitor na pauta, se houver.
func (s *Service) MeuVoto(ctx context.Context, pautaID, eleitorID uuid.UUID) (Voto, error) {
	return s.store.GetVoto(ctx, pautaID, eleitorID)
}

// ListVotos lista as cédulas de uma pauta para auditoria (admin).
func (s *Service) ListVotos(ctx context.Context, ator Ator, pautaID uuid.UUID) ([]Voto, error) {
	if err := requireAdmin(ator); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPauta(ctx, pautaID); err != nil {
		return nil, err
	}
	return s.store.ListVotos(ctx, pautaID)
}

// Apuracao calcula o resultado ao vivo de uma pauta. Assembleias canceladas
// não exibem apuração ativa. O cache só poupa a leitura das cédulas: pauta e
// assembleia são sempre relidas, então uma entrada gravada depois de exclusão
// ou cancelamento nunca é servida.
func (s *Service) Apuracao(ctx context.Context, pautaID uuid.UUID) (Apuracao, error) {
	p, err := s.store.GetPauta(ctx, pautaID)
	if err != nil {
		return Apuracao{}, err
	}
	a, err := s.store.GetAssembleia(ctx, p.AssembleiaID)
	if err != nil {
		return Apuracao{}, err
	}
	if a.Status == AssembleiaCancelada {
		return Apuracao{}, fmt.Errorf("%w: assembleia cancelada", ErrInvalidState)
	}

	if cached, ok := s.cachedApuracao(ctx, pautaID); ok {
		return cached, nil
	}

	res, err := s.apurar(ctx, p)
	if err != nil {
		return Apuracao{}, err
	}
	s.storeApuracao(ctx, res)
	return res, nil
}

// ApuracaoAssembleia calcula o resultado de todas as pautas em ordem.
func (s *Service) ApuracaoAssembleia(ctx context.Context, assembleiaID uuid.UUID) ([]Apuracao, error) {
	a, err := s.store.GetAssembleia(ctx, assembleiaID)
	if err != nil {
		return nil, err
	}
	if a.Status == AssembleiaCancelada {
		return nil, fmt.Errorf("%w: assembleia cancelada", ErrInvalidState)
	}
	pautas, err := s.store.ListPautas(ctx, assembleiaID)
	if err != nil {
		return nil, err
	}
	out := make([]Apuracao, 0, len(pautas))
	for _, p := range pautas {
		res, err := s.apurar(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ApuracaoAuditoria calcula o resultado sem cache e mesmo para assembleias canceladas (admin).
func (s *Service) ApuracaoAuditoria(ctx context.Context, ator Ator, pautaID uuid.UUID) (Apuracao, error) {
	if err := requireAdmin(ator); err != nil {
		return Apuracao{}, err
	}
	p, err := s.store.GetPauta(ctx, pautaID)
	if err != nil {
		return Apuracao{}, err
	}
	return s.apurar(ctx, p)
}

func (s *Service) apurar(ctx context.Context, p Pauta) (Apuracao, error) {
	votos, err := s.store.ListVotos(ctx, p.ID)
	if err != nil {
		return Apuracao{}, err
	}
	return Apurar(p, votos), nil
}

func apuracaoKey(pautaID uuid.UUID) string {
	return fmt.Sprintf("assembleia:apuracao:%s", pautaID.String())
}

func (s *Service) cachedApuracao(ctx context.Context, pautaID uuid.UUID) (Apuracao, bool) {
	if s.cache == nil {
		return Apuracao{}, false
	}
	data, err := s.cache.Get(ctx, apuracaoKey(pautaID)).Bytes()
	if err != nil {
		return Apuracao{}, false
	}
	var res Apuracao
	if json.Unmarshal(data, &res) != nil {
		return Apuracao{}, false
	}
	return res, true
}

func (s *Service) storeApuracao(ctx context.Context, res Apuracao) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, apuracaoKey(res.PautaID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("pauta_id", res.PautaID.String()).Msg("apuração: falha ao gravar cache")
	}
}

func (s *Service) invalidateApuracao(ctx context.Context, pautaID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, apuracaoKey(pautaID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("pauta_id", pautaID.String()).Msg("apuração: falha ao invalidar cache")
	}
}

func (s *Service) invalidateAssembleia(ctx context.Context, assembleiaID uuid.UUID) {
	if s.cache == nil {
		return
	}
	pautas, err := s.store.ListPautas(ctx, assembleiaID)
	if err != nil {
		s.logger.Warn().Err(err).Str("assembleia_id", assembleiaID.String()).Msg("apuração: falha ao listar pautas para invalidar cache")
		return
	}
	for _, p := range pautas {
		s.invalidateApuracao(ctx, p.ID)
	}
}

func (s *Service) notify(ctx context.Context, change notify.Change) {
	if change.Em.IsZero() {
		change.Em = s.timestamp()
	}
	if err := s.notifier.Notify(ctx, change); err != nil {
		s.logger.Warn().Err(err).Str("tipo", string(change.Tipo)).Str("assembleia_id", change.AssembleiaID.String()).Msg("notificação descartada")
	}
}
