package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "condominio"

// Metrics agrupa os contadores da votação. Métodos aceitam receptor nil.
type Metrics struct {
	votos      prometheus.Counter
	duplicados prometheus.Counter
	presencas  prometheus.Counter
	transicoes *prometheus.CounterVec
}

// New registra os contadores no registry informado.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &Metrics{
		votos: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votos_registrados_total",
			Help:      "Total de votos aceitos pela urna",
		}),
		duplicados: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votos_duplicados_total",
			Help:      "Total de tentativas de voto repetido rejeitadas",
		}),
		presencas: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presencas_registradas_total",
			Help:      "Total de presenças novas registradas",
		}),
		transicoes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transicoes_total",
			Help:      "Transições de estado de assembleias e pautas",
		}, []string{"entidade", "status"}),
	}
}

func (m *Metrics) VotoRegistrado() {
	if m == nil {
		return
	}
	m.votos.Inc()
}

func (m *Metrics) VotoDuplicado() {
	if m == nil {
		return
	}
	m.duplicados.Inc()
}

func (m *Metrics) PresencaRegistrada() {
	if m == nil {
		return
	}
	m.presencas.Inc()
}

func (m *Metrics) Transicao(entidade, status string) {
	if m == nil {
		return
	}
	m.transicoes.WithLabelValues(entidade, status).Inc()
}
