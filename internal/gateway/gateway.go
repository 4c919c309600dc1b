package gateway

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MessageHandler is invoked once per inbound message.
type MessageHandler func(topic string, payload []byte)

// Gateway bridges the MQTT device channel. Publishes are fire-and-forget
// with a bounded wait; durability for retried execution lives in the job
// queue, not here.
type Gateway struct {
	client         mqtt.Client
	log            *zap.Logger
	publishTimeout time.Duration
}

// Options configures the gateway connection.
type Options struct {
	Broker         string
	ClientID       string
	PublishTimeout time.Duration
}

// clientOptions builds the paho options. The initial dial is retried by
// Connect's backoff wrapper, so paho's own connect retry stays off;
// reconnects after a drop happen on a fixed 3s cadence.
func clientOptions(opts Options, log *zap.Logger) *mqtt.ClientOptions {
	mqttOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(3 * time.Second).
		SetCleanSession(true)
	mqttOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost, reconnecting", zap.Error(err))
	})
	mqttOpts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.Info("mqtt connected", zap.String("broker", opts.Broker))
	})
	return mqttOpts
}

// Connect dials the broker, retrying with exponential backoff. Once
// connected, paho reconnects on its own with a fixed retry interval;
// publishes issued while disconnected fail fast.
func Connect(opts Options, log *zap.Logger) (*Gateway, error) {
	if opts.PublishTimeout == 0 {
		opts.PublishTimeout = 5 * time.Second
	}

	client := mqtt.NewClient(clientOptions(opts, log))

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warn("mqtt connect failed, retrying", zap.Error(token.Error()))
			return token.Error()
		}
		return nil
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", opts.Broker, err)
	}

	return &Gateway{
		client:         client,
		log:            log,
		publishTimeout: opts.PublishTimeout,
	}, nil
}

// Publish sends a payload on a topic, waiting at most the configured
// timeout for broker acknowledgement. A timeout or broker error is
// returned to the caller; nothing is queued for later.
func (g *Gateway) Publish(topic string, payload []byte) error {
	token := g.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(g.publishTimeout) {
		return fmt.Errorf("publish to %s: timed out after %s", topic, g.publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler for a topic filter.
func (g *Gateway) Subscribe(filter string, handler MessageHandler) error {
	token := g.client.Subscribe(filter, 1, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", filter, token.Error())
	}
	g.log.Info("subscribed", zap.String("filter", filter))
	return nil
}

// Close disconnects from the broker.
func (g *Gateway) Close() {
	g.client.Disconnect(250)
	g.log.Info("mqtt disconnected")
}
