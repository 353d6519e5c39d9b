package notify

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

// Connect builds and connects the broker client used for alert delivery.
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", brokerURL, token.Error())
	}
	return client, nil
}

// MQTTScheduler publishes arm/cancel messages on alerts/<device> topics.
// The companion app (or a gateway) holding the device subscription turns
// them into local notifications.
type MQTTScheduler struct {
	client mqtt.Client
}

func NewMQTTScheduler(client mqtt.Client) *MQTTScheduler {
	return &MQTTScheduler{client: client}
}

type alertEnvelope struct {
	Action string `json:"action"` // "arm" or "cancel"
	Alert  *Alert `json:"alert,omitempty"`
	ID     string `json:"id,omitempty"`
}

func (s *MQTTScheduler) publish(device string, env alertEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal alert envelope: %w", err)
	}

	topic := fmt.Sprintf("alerts/%s", device)
	token := s.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", topic).Str("action", env.Action).
			Msg("alert publish failed")
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}

func (s *MQTTScheduler) ScheduleAlert(_ context.Context, device string, alert Alert) error {
	return s.publish(device, alertEnvelope{Action: "arm", Alert: &alert})
}

func (s *MQTTScheduler) CancelAlert(_ context.Context, device, id string) error {
	return s.publish(device, alertEnvelope{Action: "cancel", ID: id})
}
