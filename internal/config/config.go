package config

import (
	// Std
	"io"
	"os"

	// Momentum
	"github.com/momentum-xyz/media-placer/internal/logger"

	// Third-Party
	"github.com/kelseyhightower/envconfig"
	"github.com/pborman/getopt/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// Config : structure to hold configuration
type Config struct {
	API      API     `yaml:"api"`
	Scene    Scene   `yaml:"scene"`
	MQTT     MQTT    `yaml:"mqtt"`
	Influx   Influx  `yaml:"influx"`
	Settings Local   `yaml:"settings"`
	Command  Command `yaml:"-" ignored:"true"`
}

func (x *Config) Init() {
	x.API.Init()
	x.Scene.Init()
	x.MQTT.Init()
	x.Influx.Init()
	x.Settings.Init()
}

const configFileName = "config.yaml"

var log = logger.L()

func defConfig() *Config {
	var cfg Config
	cfg.Init()
	return &cfg
}

// readOpts applies command line flags. It reports whether help was requested.
func readOpts(cfg *Config, args []string) (bool, error) {
	set := getopt.New()
	helpFlag := false
	set.FlagLong(&helpFlag, "help", 'h', "display help")
	set.FlagLong(&cfg.Settings.LogLevel, "loglevel", 'l', "log level, -1 is debug")
	set.FlagLong(&cfg.API.BaseURL, "api", 'a', "scene API base URL")
	set.FlagLong(&cfg.Scene.Room, "room", 'r', "room to work in")
	set.FlagLong(&cfg.Scene.Soundsystem, "soundsystem", 's', "name of the node audio is attached to")
	set.FlagLong(&cfg.Command.Kind, "kind", 'k', "media kind to add: image, gif, audio or model")
	set.FlagLong(&cfg.Command.Upload, "upload", 'u', "JSON file holding the upload result")
	set.FlagLong(&cfg.Command.Extension, "extension", 'e', "model file extension")
	set.FlagLong(&cfg.Command.Restore, "restore", 'R', "rebuild the room from stored objects")

	if err := set.Getopt(args, nil); err != nil {
		set.PrintUsage(os.Stderr)
		return false, errors.WithMessage(err, "failed to parse flags")
	}
	if helpFlag {
		set.PrintUsage(os.Stdout)
	}
	return helpFlag, nil
}

func processError(err error) {
	log.Fatal(err)
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

func readFile(cfg *Config, filename string) error {
	if !fileExists(filename) {
		return nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithMessagef(err, "failed to open %s", filename)
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil && err != io.EOF {
		return errors.WithMessagef(err, "failed to decode %s", filename)
	}
	return nil
}

func readEnv(cfg *Config) error {
	return errors.WithMessage(envconfig.Process("", cfg), "failed to read environment")
}

func prettyPrint(cfg *Config) {
	d, _ := yaml.Marshal(cfg)
	log.Infof("--- Config ---\n%s\n\n", string(d))
}

// Load builds the configuration from defaults, config.yaml, the environment
// and args, in that order.
func Load(filename string, args []string) (*Config, bool, error) {
	cfg := defConfig()

	if err := readFile(cfg, filename); err != nil {
		return nil, false, err
	}
	if err := readEnv(cfg); err != nil {
		return nil, false, err
	}
	help, err := readOpts(cfg, args)
	if err != nil {
		return nil, false, err
	}
	return cfg, help, nil
}

// GetConfig : get config file
func GetConfig() *Config {
	cfg, help, err := Load(configFileName, os.Args)
	if err != nil {
		processError(err)
	}
	if help {
		os.Exit(0)
	}

	logger.SetLevel(zapcore.Level(cfg.Settings.LogLevel))
	prettyPrint(cfg)

	return cfg
}
