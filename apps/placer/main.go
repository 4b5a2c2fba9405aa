package main

import (
	// Std
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	// Momentum
	"github.com/momentum-xyz/media-placer/internal/actions"
	"github.com/momentum-xyz/media-placer/internal/assets"
	"github.com/momentum-xyz/media-placer/internal/config"
	"github.com/momentum-xyz/media-placer/internal/eventloop"
	"github.com/momentum-xyz/media-placer/internal/loader"
	"github.com/momentum-xyz/media-placer/internal/logger"
	"github.com/momentum-xyz/media-placer/internal/media"
	"github.com/momentum-xyz/media-placer/internal/metrics"
	"github.com/momentum-xyz/media-placer/internal/notify"
	"github.com/momentum-xyz/media-placer/internal/objects"
	"github.com/momentum-xyz/media-placer/internal/scene"

	// Third-Party
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var log = logger.L()

func main() {
	if err := run(); err != nil {
		log.Fatal(errors.WithMessage(err, "error running"))
	}
}

func run() error {
	cfg := config.GetConfig()
	defer logger.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := eventloop.New()
	go loop.Run(ctx)
	defer loop.Close()

	graph := scene.NewGraph()
	speakers := scene.NewGroup()
	speakers.SetName(cfg.Scene.Soundsystem)
	graph.Add(speakers)
	defer graph.Clear()

	fetcher := assets.NewFetcher(cfg.API.Timeout)
	loaders := loader.New(fetcher, media.NewHeadless(loop, nil), nil)
	client := objects.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	var opts []actions.Option
	if cfg.MQTT.Enabled {
		mq, err := notify.InitMQTTClient(&cfg.MQTT, uuid.NewString())
		if err != nil {
			return errors.WithMessage(err, "failed to init MQTT client")
		}
		publisher := notify.NewPublisher(mq, &cfg.MQTT)
		defer publisher.Close()
		opts = append(opts, actions.WithNotifier(publisher))
	}
	if cfg.Influx.Enabled {
		reporter := metrics.NewInflux(&cfg.Influx)
		defer reporter.Close()
		opts = append(opts, actions.WithReporter(reporter))
	}

	act := actions.New(actions.Config{
		BaseURL:     cfg.API.BaseURL,
		Room:        cfg.Scene.Room,
		Soundsystem: cfg.Scene.Soundsystem,
	}, graph, scene.NewCamera(), loaders, client, opts...)

	if cfg.Command.Restore {
		return restore(ctx, act)
	}
	return add(ctx, act, cfg.Command)
}

func restore(ctx context.Context, act *actions.Actions) error {
	outcomes, err := act.Restore(ctx, act.Room())
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			log.Warnf("%s %s: %v", o.Descriptor.Type, o.Descriptor.UUID, o.Err)
			continue
		}
		log.Infof("%s %s restored as %s", o.Descriptor.Type, o.Descriptor.UUID, o.Object.UUID())
	}
	return nil
}

func add(ctx context.Context, act *actions.Actions, cmd config.Command) error {
	upload, err := readUpload(cmd.Upload)
	if err != nil {
		return err
	}

	var pending <-chan actions.Outcome
	switch objects.Type(cmd.Kind) {
	case objects.TypeImage:
		pending = act.AddImage(ctx, upload)
	case objects.TypeGIF:
		pending = act.AddGIF(ctx, upload)
	case objects.TypeAudio:
		pending = act.AddAudio(ctx, upload)
	case objects.TypeModel:
		pending = act.AddModel(ctx, upload, cmd.Extension)
	default:
		return errors.Errorf("unknown kind %q, want image, gif, audio or model", cmd.Kind)
	}

	o := <-pending
	if !o.Placed() {
		return o.Err
	}
	if o.Err != nil {
		log.Warnf("%s placed but not saved: %v", o.Object.UUID(), o.Err)
		return nil
	}
	d, err := json.Marshal(o.Stored)
	if err != nil {
		log.Warnf("placed %s: failed to encode descriptor: %v", o.Object.UUID(), err)
		return nil
	}
	log.Infof("placed %s: %s", o.Object.UUID(), d)
	return nil
}

func readUpload(filename string) (objects.UploadResult, error) {
	var upload objects.UploadResult
	if filename == "" {
		return upload, errors.New("no upload result given, use --upload")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return upload, errors.WithMessage(err, "failed to read upload result")
	}
	if err := json.Unmarshal(data, &upload); err != nil {
		return upload, errors.WithMessagef(err, "failed to decode %s", filename)
	}
	return upload, nil
}
