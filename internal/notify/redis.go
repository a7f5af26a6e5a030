package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const subscriberBuffer = 16

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publica e assina avisos via Redis Pub/Sub, um canal por assembleia.
type RedisNotifier struct {
	client *redis.Client
	pub    publisher
	logger zerolog.Logger
}

// NewRedisNotifier cria o notificador sobre um cliente Redis.
func NewRedisNotifier(client *redis.Client, logger zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, pub: client, logger: logger}
}

// Channel devolve o canal Redis de uma assembleia.
func Channel(assembleiaID uuid.UUID) string {
	return "condominio:assembleia:" + assembleiaID.String()
}

// Notify publica o aviso no canal da assembleia.
func (n *RedisNotifier) Notify(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(ctx, Channel(change.AssembleiaID), payload).Err(); err != nil {
		return fmt.Errorf("notify: publicar: %w", err)
	}
	return nil
}

// Subscribe assina o canal da assembleia. O canal devolvido fecha quando ctx termina.
// Assinantes lentos perdem avisos em vez de bloquear a entrega.
func (n *RedisNotifier) Subscribe(ctx context.Context, assembleiaID uuid.UUID) (<-chan Change, error) {
	if n.client == nil {
		return nil, fmt.Errorf("notify: redis não configurado")
	}
	ps := n.client.Subscribe(ctx, Channel(assembleiaID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("notify: assinar: %w", err)
	}

	out := make(chan Change, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				change, err := decode(msg.Payload)
				if err != nil {
					n.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("notify: payload inválido")
					continue
				}
				select {
				case out <- change:
				default:
					n.logger.Warn().Str("assembleia_id", assembleiaID.String()).Msg("notify: assinante lento, aviso descartado")
				}
			}
		}
	}()
	return out, nil
}

func decode(payload string) (Change, error) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return Change{}, err
	}
	return change, nil
}
