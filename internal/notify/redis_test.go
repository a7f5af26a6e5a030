package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	channel string
	payload []byte
	err     error
}

func (s *stubPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	s.channel = channel
	s.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if s.err != nil {
		cmd.SetErr(s.err)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestRedisNotifierPublishesOnAssemblyChannel(t *testing.T) {
	pub := &stubPublisher{}
	n := &RedisNotifier{pub: pub, logger: zerolog.Nop()}

	assembleiaID := uuid.New()
	pautaID := uuid.New()
	em := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)

	err := n.Notify(context.Background(), Change{Tipo: TipoVoto, AssembleiaID: assembleiaID, PautaID: &pautaID, Em: em})
	require.NoError(t, err)
	assert.Equal(t, "condominio:assembleia:"+assembleiaID.String(), pub.channel)

	got, err := decode(string(pub.payload))
	require.NoError(t, err)
	assert.Equal(t, TipoVoto, got.Tipo)
	assert.Equal(t, assembleiaID, got.AssembleiaID)
	require.NotNil(t, got.PautaID)
	assert.Equal(t, pautaID, *got.PautaID)
	assert.True(t, em.Equal(got.Em))
}

func TestRedisNotifierWrapsPublishError(t *testing.T) {
	pub := &stubPublisher{err: errors.New("conexão recusada")}
	n := &RedisNotifier{pub: pub, logger: zerolog.Nop()}

	err := n.Notify(context.Background(), Change{Tipo: TipoAssembleiaStatus, AssembleiaID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexão recusada")
}

func TestSubscribeWithoutClient(t *testing.T) {
	n := &RedisNotifier{logger: zerolog.Nop()}
	_, err := n.Subscribe(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode("{não é json")
	assert.Error(t, err)
}

func TestRedisNotifierRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewRedisNotifier(client, zerolog.Nop())
	id := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes, err := n.Subscribe(ctx, id)
	require.NoError(t, err)

	pauta := uuid.New()
	require.NoError(t, n.Notify(ctx, Change{Tipo: TipoPautaStatus, AssembleiaID: id, PautaID: &pauta, Em: time.Now()}))
	// outra assembleia não chega neste assinante
	require.NoError(t, n.Notify(ctx, Change{Tipo: TipoVoto, AssembleiaID: uuid.New()}))

	select {
	case got := <-changes:
		assert.Equal(t, TipoPautaStatus, got.Tipo)
		assert.Equal(t, id, got.AssembleiaID)
		require.NotNil(t, got.PautaID)
		assert.Equal(t, pauta, *got.PautaID)
	case <-ctx.Done():
		t.Fatal("aviso não entregue")
	}

	cancel()
	for range changes {
	}
}
