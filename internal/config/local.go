package config

type Local struct {
	LogLevel int `yaml:"loglevel" envconfig:"PLACER_LOGLEVEL"`
}

func (x *Local) Init() {
	x.LogLevel = 0
}
