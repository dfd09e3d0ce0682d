package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"building-backend/internal/config"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const (
	connectTimeout = 10 * time.Second
	publishQoS     = 1
)

var (
	ErrNotConnected     = errors.New("mqtt: client not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
)

// MQTTPublisher publishes events as JSON to <prefix>/units/<unitId>/<type>.
type MQTTPublisher struct {
	client pahomqtt.Client
	prefix string
}

// ConnectMQTT dials the broker. Paho reconnects on its own after the first
// successful connection.
func ConnectMQTT(cfg config.MQTTConfig, log *logrus.Logger) (*MQTTPublisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
		}).
		SetOnConnectHandler(func(pahomqtt.Client) {
			log.WithField("broker", cfg.BrokerURL).Info("mqtt connected")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newMQTTPublisher(client, cfg.TopicPrefix), nil
}

func newMQTTPublisher(client pahomqtt.Client, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix}
}

// Topic returns the topic an event is published on.
func (p *MQTTPublisher) Topic(e Event) string {
	return fmt.Sprintf("%s/units/%d/%s", p.prefix, e.UnitID, e.Type)
}

func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	token := p.client.Publish(p.Topic(e), publishQoS, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	}
}

// Close waits briefly for in-flight messages and disconnects.
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
