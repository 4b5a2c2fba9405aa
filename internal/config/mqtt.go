package config

type MQTT struct {
	Enabled     bool   `yaml:"enabled" envconfig:"MQTT_ENABLED"`
	HOST        string `yaml:"host" envconfig:"MQTT_BROKER_HOST"`
	PORT        uint   `yaml:"port" envconfig:"MQTT_BROKER_PORT"`
	USER        string `yaml:"user" envconfig:"MQTT_BROKER_USER"`
	PASSWORD    string `yaml:"password" envconfig:"MQTT_BROKER_PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix" envconfig:"MQTT_TOPIC_PREFIX"`
	QOS         byte   `yaml:"qos" envconfig:"MQTT_QOS"`
}

func (x *MQTT) Init() {
	x.HOST = "localhost"
	x.PORT = 1883
	x.USER = ""
	x.PASSWORD = ""
	x.TopicPrefix = "scene"
	x.QOS = 1
}
