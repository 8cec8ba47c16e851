package mqtt

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/internal/errors"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// Broker is the part of Client the bridge uses
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Unsubscribe(topic string) error
}

// Bridge is an accessory.Host that mirrors switches to MQTT. Switch state
// is retained as ON/OFF; commands arrive on the matching set topics.
type Bridge struct {
	broker     Broker
	topics     Topics
	qos        byte
	setTimeout time.Duration
	logger     *slog.Logger

	mu          sync.RWMutex
	accessories map[string]*accessory.Accessory
}

// NewBridge creates an MQTT host publishing under prefix
func NewBridge(broker Broker, prefix string, qosLevel int, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		broker:      broker,
		topics:      Topics{Prefix: prefix},
		qos:         qos(qosLevel),
		setTimeout:  2 * saveconnect.DefaultRequestTimeout,
		logger:      logger,
		accessories: make(map[string]*accessory.Accessory),
	}
}

// Name implements accessory.Host
func (b *Bridge) Name() string { return "mqtt" }

// Publish implements accessory.Host
func (b *Bridge) Publish(acc *accessory.Accessory) error {
	b.mu.Lock()
	b.accessories[acc.ID()] = acc
	b.mu.Unlock()

	var errs []error
	for _, mode := range saveconnect.Switches {
		topic := b.topics.Set(acc.ID(), mode)
		if err := b.broker.Subscribe(topic, b.qos, b.handleSet); err != nil {
			errs = append(errs, err)
		}
		b.publishState(acc.ID(), mode, acc.Switch(mode))
	}
	if err := b.broker.Publish(b.topics.Available(acc.ID()), []byte(PayloadOnline), b.qos, true); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.WrapErrorf(errs[0], "mqtt publish %s", acc.DisplayName())
	}
	b.logger.Debug("mqtt: accessory published", "name", acc.DisplayName())
	return nil
}

// Unpublish implements accessory.Host
func (b *Bridge) Unpublish(acc *accessory.Accessory) error {
	b.mu.Lock()
	delete(b.accessories, acc.ID())
	b.mu.Unlock()

	for _, mode := range saveconnect.Switches {
		if err := b.broker.Unsubscribe(b.topics.Set(acc.ID(), mode)); err != nil {
			b.logger.Warn("mqtt: unsubscribe failed", "name", acc.DisplayName(), "error", err)
		}
	}
	return b.broker.Publish(b.topics.Available(acc.ID()), []byte(PayloadOffline), b.qos, true)
}

// UpdateSwitch implements accessory.Host
func (b *Bridge) UpdateSwitch(acc *accessory.Accessory, mode saveconnect.BoostMode, on bool) {
	b.publishState(acc.ID(), mode, on)
}

func (b *Bridge) publishState(id string, mode saveconnect.BoostMode, on bool) {
	topic := b.topics.State(id, mode)
	if err := b.broker.Publish(topic, []byte(StatePayload(on)), b.qos, true); err != nil {
		b.logger.Warn("mqtt: state publish failed", "topic", topic, "error", err)
	}
}

// handleSet applies a command from a set topic. On failure the current
// state is published again so retained state matches the device.
func (b *Bridge) handleSet(topic string, payload []byte) error {
	id, mode, ok := b.topics.ParseSet(topic)
	if !ok {
		return errors.InvalidInputf("unexpected topic %s", topic)
	}
	on, ok := ParseSwitchPayload(payload)
	if !ok {
		return errors.InvalidInputf("invalid payload %q on %s", payload, topic)
	}

	b.mu.RLock()
	acc, exists := b.accessories[id]
	b.mu.RUnlock()
	if !exists {
		return errors.NotFoundf("accessory %s", id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.setTimeout)
	defer cancel()
	if err := acc.SetSwitch(ctx, mode, on); err != nil {
		b.publishState(id, mode, acc.Switch(mode))
		return err
	}
	return nil
}
