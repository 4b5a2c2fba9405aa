package config

type Influx struct {
	Enabled bool   `yaml:"enabled" envconfig:"INFLUXDB_ENABLED"`
	URL     string `yaml:"url" envconfig:"INFLUXDB_URL"`
	ORG     string `yaml:"org" envconfig:"INFLUXDB_ORG"`
	BUCKET  string `yaml:"bucket" envconfig:"INFLUXDB_BUCKET"`
	TOKEN   string `yaml:"token" envconfig:"INFLUXDB_TOKEN"`
}

func (x *Influx) Init() {
	x.URL = "http://localhost:8086"
	x.ORG = "momentum"
	x.BUCKET = "placer"
	x.TOKEN = ""
}
