package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// Bus es un pub/sub en memoria para eventos de dominio y la cola de trabajos
// de prueba virtual. Un solo proceso alcanza para este despliegue; cambiar el
// Pub/Sub de watermill es suficiente si algún día se necesita más de uno.
type Bus struct {
	ps *gochannel.GoChannel
}

func NewBus() *Bus {
	ps := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
	return &Bus{ps: ps}
}

// Publish emite un evento sin bloquear el caso de uso; los errores solo se
// loguean.
func (b *Bus) Publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("serializando evento")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.ps.Publish(topic, msg); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("publicando evento")
	}
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.ps.Subscribe(ctx, topic)
}

func (b *Bus) Close() error { return b.ps.Close() }
