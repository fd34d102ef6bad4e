package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const defaultMQTTWait = 5 * time.Second

type mqttClient interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher maps routing keys onto topics below a prefix, e.g. coverage.assigned.sub-1 becomes
// <prefix>/coverage/assigned/sub-1.
type MQTTPublisher struct {
	client mqttClient
	prefix string
	qos    byte
	logger *zap.Logger
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(broker, clientID, prefix string, logger *zap.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(defaultMQTTWait).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", broker, token.Error())
	}
	return newMQTTPublisher(client, prefix, logger), nil
}

func newMQTTPublisher(client mqttClient, prefix string, logger *zap.Logger) *MQTTPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MQTTPublisher{client: client, prefix: strings.TrimRight(prefix, "/"), qos: 1, logger: logger}
}

// Topic returns the MQTT topic for a routing key.
func (p *MQTTPublisher) Topic(routingKey string) string {
	suffix := strings.ReplaceAll(routingKey, ".", "/")
	if p.prefix == "" {
		return suffix
	}
	return p.prefix + "/" + suffix
}

// Publish sends the payload at QoS 1 and waits for the broker ack or the context deadline.
func (p *MQTTPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("publish %s: mqtt client not connected", routingKey)
	}
	wait := defaultMQTTWait
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}

	topic := p.Topic(routingKey)
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("publish %s: timed out after %s", topic, wait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debug("message published", zap.String("topic", topic), zap.Int("size", len(payload)))
	return nil
}

// Close disconnects after letting in-flight work drain briefly.
func (p *MQTTPublisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	return nil
}
