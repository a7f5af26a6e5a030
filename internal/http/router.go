package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/condominio/internal/assembleia"
	"github.com/gestaozabele/condominio/internal/auth"
	"github.com/gestaozabele/condominio/internal/config"
	httpmiddleware "github.com/gestaozabele/condominio/internal/http/middleware"
	"github.com/gestaozabele/condominio/internal/notify"
	"github.com/gestaozabele/condominio/internal/presenca"
	"github.com/gestaozabele/condominio/internal/relatorio"
	"github.com/gestaozabele/condominio/internal/storage"
)

const defaultKeepAlive = 25 * time.Second

// Check é uma verificação de dependência usada por /ready.
type Check func(ctx context.Context) error

// Deps reúne o que o roteador precisa; campos nil desabilitam o recurso correspondente.
type Deps struct {
	Config      *config.Config
	JWT         *auth.JWTManager
	Assembleias *assembleia.Service
	Relatorios  *relatorio.Exporter
	Links       *presenca.Links
	Storage     storage.Uploader
	Eventos     notify.Subscriber
	Metrics     http.Handler
	Checks      map[string]Check
	// Shutdown fecha os streams de eventos quando o servidor encerra.
	Shutdown <-chan struct{}
}

type Handler struct {
	assembleias   *assembleia.Service
	relatorios    *relatorio.Exporter
	links         *presenca.Links
	storage       storage.Uploader
	eventos       notify.Subscriber
	checks        map[string]Check
	keepAlive     time.Duration
	shutdown      <-chan struct{}
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	logger        zerolog.Logger
}

// NewRouter devolve roteador configurado.
func NewRouter(d Deps) (http.Handler, error) {
	if d.Config == nil || d.JWT == nil || d.Assembleias == nil {
		return nil, errors.New("http: config, jwt e serviço de assembleias são obrigatórios")
	}
	cfg := d.Config

	uploader := d.Storage
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	exporter := d.Relatorios
	if exporter == nil {
		exporter = relatorio.NewExporter(d.Assembleias.Store())
	}
	links := d.Links
	if links == nil {
		var err error
		if links, err = presenca.NewLinks(cfg.PublicBaseURL); err != nil {
			return nil, err
		}
	}

	h := &Handler{
		assembleias:   d.Assembleias,
		relatorios:    exporter,
		links:         links,
		storage:       uploader,
		eventos:       d.Eventos,
		checks:        d.Checks,
		keepAlive:     defaultKeepAlive,
		shutdown:      d.Shutdown,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		logger:        log.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		if d.Metrics != nil {
			public.Method(http.MethodGet, "/metrics", d.Metrics)
		}
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(d.JWT))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))
		h.mountAssembleias(private)
		h.mountPautas(private)
	})

	return r, nil
}

func requireAdmin() func(http.Handler) http.Handler {
	return httpmiddleware.RequireRoles(assembleia.PapelSindico, assembleia.PapelAdmin)
}

func (h *Handler) mountAssembleias(r chi.Router) {
	r.Route("/assembleias", func(r chi.Router) {
		r.Get("/", h.ListAssembleias)
		r.With(requireAdmin()).Post("/", h.CreateAssembleia)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetAssembleia)
			r.Get("/apuracao", h.ApuracaoAssembleia)
			r.Get("/eventos", h.EventosAssembleia)
			r.Post("/presenca", h.RegistrarPresenca)

			r.Group(func(admin chi.Router) {
				admin.Use(requireAdmin())
				admin.Patch("/", h.UpdateAssembleia)
				admin.Delete("/", h.DeleteAssembleia)
				admin.Post("/iniciar", h.IniciarAssembleia)
				admin.Post("/encerrar", h.EncerrarAssembleia)
				admin.Post("/cancelar", h.CancelarAssembleia)
				admin.Get("/presencas", h.ListPresencas)
				admin.Get("/presenca/link", h.PresencaLink)
				admin.Get("/presenca/qrcode.png", h.PresencaQRCode)
				admin.Get("/relatorio", h.DownloadRelatorio)
				admin.Post("/relatorio/publicar", h.PublicarRelatorio)
				admin.Post("/pautas", h.CreatePauta)
			})
		})
	})
}

func (h *Handler) mountPautas(r chi.Router) {
	r.Route("/pautas/{id}", func(r chi.Router) {
		r.Get("/", h.GetPauta)
		r.Post("/votos", h.RegistrarVoto)
		r.Get("/meu-voto", h.MeuVoto)
		r.Get("/apuracao", h.ApuracaoPauta)

		r.Group(func(admin chi.Router) {
			admin.Use(requireAdmin())
			admin.Patch("/", h.UpdatePauta)
			admin.Delete("/", h.DeletePauta)
			admin.Post("/abrir", h.AbrirPauta)
			admin.Post("/encerrar", h.EncerrarPauta)
			admin.Get("/votos", h.ListVotos)
			admin.Get("/apuracao/auditoria", h.ApuracaoAuditoria)
		})
	})
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida as dependências registradas (banco, Redis).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]any{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// ator monta o ator da requisição a partir das claims validadas pelo middleware Auth.
func ator(r *http.Request) (assembleia.Ator, error) {
	id, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		return assembleia.Ator{}, err
	}
	return assembleia.Ator{ID: id, Papeis: httpmiddleware.GetRoles(r.Context())}, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}
