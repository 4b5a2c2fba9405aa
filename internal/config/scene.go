package config

import "time"

type API struct {
	BaseURL string        `yaml:"base_url" envconfig:"SCENE_API_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"SCENE_API_TIMEOUT"`
}

func (x *API) Init() {
	x.BaseURL = "http://localhost:3000"
	x.Timeout = 0
}

type Scene struct {
	Room        string `yaml:"room" envconfig:"SCENE_ROOM"`
	Soundsystem string `yaml:"soundsystem" envconfig:"SCENE_SOUNDSYSTEM"`
}

func (x *Scene) Init() {
	x.Room = "default"
	x.Soundsystem = "soundsystem"
}

// Command is what the placer was asked to do on this run. It only comes from flags.
type Command struct {
	Kind      string
	Upload    string
	Extension string
	Restore   bool
}
