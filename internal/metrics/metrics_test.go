package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.VotoRegistrado()
	m.VotoRegistrado()
	m.VotoDuplicado()
	m.PresencaRegistrada()
	m.Transicao("pauta", "open")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.votos))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicados))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.presencas))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transicoes.WithLabelValues("pauta", "open")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.VotoRegistrado()
		m.VotoDuplicado()
		m.PresencaRegistrada()
		m.Transicao("assembleia", "closed")
	})
	assert.Nil(t, New(nil))
}
