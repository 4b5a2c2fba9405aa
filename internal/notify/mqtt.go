package notify

import (
	// Std
	"encoding/json"
	"strconv"
	"time"

	// Momentum
	"github.com/momentum-xyz/media-placer/internal/config"
	"github.com/momentum-xyz/media-placer/internal/logger"
	"github.com/momentum-xyz/media-placer/internal/objects"

	// Third-Party
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
)

const publishTimeout = 5 * time.Second

// Client is bridge between our app and MQTT
type Client interface {
	SafePublish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect()
}

type mqttClient struct {
	mutex deadlock.Mutex
	mqtt  mqtt.Client
}

var (
	log                                  = logger.L().With("package", "notify")
	connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
		log.Info("Connected to MQTT broker")
	}
	connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
		log.Infof("Connection to MQTT broker lost: %v", err)
	}
)

func InitMQTTClient(cfg *config.MQTT, id string) (Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + cfg.HOST + ":" + strconv.FormatUint(uint64(cfg.PORT), 10))
	opts.SetClientID("placer" + id)
	opts.SetUsername(cfg.USER)
	opts.SetPassword(cfg.PASSWORD)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(2 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.WithMessage(token.Error(), "failed to connect")
	}

	return &mqttClient{
		mutex: deadlock.Mutex{},
		mqtt:  client,
	}, nil
}

func (m *mqttClient) SafePublish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.mqtt.Publish(topic, qos, retained, payload)
}

func (m *mqttClient) IsConnected() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.mqtt.IsConnected()
}

func (m *mqttClient) Disconnect() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.mqtt.Disconnect(250)
}

// Topic is where descriptors saved in room are announced.
func Topic(prefix, room string) string {
	return prefix + "/" + room + "/objects"
}

// Publisher announces saved descriptors on MQTT.
type Publisher struct {
	client Client
	prefix string
	qos    byte
}

func NewPublisher(client Client, cfg *config.MQTT) *Publisher {
	return &Publisher{client: client, prefix: cfg.TopicPrefix, qos: cfg.QOS}
}

func (p *Publisher) Announce(d objects.Descriptor) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return errors.WithMessage(err, "failed to marshal descriptor")
	}
	if !p.client.IsConnected() {
		return errors.New("not connected to MQTT broker")
	}

	topic := Topic(p.prefix, d.Room)
	token := p.client.SafePublish(topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("publish to %s timed out", topic)
	}
	return errors.WithMessagef(token.Error(), "failed to publish to %s", topic)
}

func (p *Publisher) Close() {
	p.client.Disconnect()
}
