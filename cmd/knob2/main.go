package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/gofrs/flock"
	"github.com/okzk/sdnotify"
	"github.com/rs/zerolog"

	"github.com/aosdict/knob2/internal/config"
	"github.com/aosdict/knob2/internal/irc"
	"github.com/aosdict/knob2/internal/storage"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

const usage = `knob2, an IRC bot.
Usage:
	knob2 run [--conf <filename>] [--no-console]
	knob2 -h | --help
	knob2 --version
Options:
	--conf <filename>  Configuration file to use [default: config.yaml].
	--no-console       Don't read operator commands from stdin.
	-h --help          Show this screen.
	--version          Show version.`

var errAlreadyRunning = errors.New("couldn't acquire lock (is another knob2 running in this data directory?)")

func main() {
	irc.Version = version
	irc.BuildDate = buildDate
	irc.GitCommit = gitCommit

	arguments, _ := docopt.ParseArgs(usage, nil,
		fmt.Sprintf("knob2 %s (built %s, commit %s)", version, buildDate, gitCommit))

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}).
		With().Timestamp().Logger()

	if !arguments["run"].(bool) {
		return
	}

	cfg, err := config.Load(arguments["--conf"].(string))
	if err != nil {
		log.Fatal().Err(err).Msg("config file did not load successfully")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("bad log level")
	}
	log = log.Level(level)

	if err := run(cfg, log, !arguments["--no-console"].(bool)); err != nil {
		log.Fatal().Err(err).Msg("knob2 stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger, console bool) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.DataDir, "knob2.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock data directory: %w", err)
	} else if !locked {
		return errAlreadyRunning
	}
	defer lock.Unlock()

	if err := writePIDFile(cfg.DataDir); err != nil {
		log.Warn().Err(err).Msg("could not write PID file")
	}

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := irc.Options{
		Logger:       log,
		PrintLevel:   irc.PrintLevel(*cfg.PrintLevel),
		TickInterval: time.Duration(cfg.TickSeconds) * time.Second,
	}
	if console {
		opts.Console = os.Stdin
	}
	client := irc.NewClient(opts)
	if err := client.SetExtensions(buildExtensions(cfg, client, store, log)...); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("server", cfg.Server).Int("port", cfg.Port).Msg("connecting")
	id := irc.Identity{Nick: cfg.Nick, Ident: cfg.Username, RealName: cfg.IRCName}
	if err := client.Connect(ctx, cfg.Server, cfg.Port, id); err != nil {
		return err
	}
	if err := sdnotify.Ready(); err != nil {
		log.Debug().Err(err).Msg("systemd not notified")
	}

	if cfg.UserModes != "" {
		if err := client.Sendf("MODE %s %s", client.Nick(), cfg.UserModes); err != nil {
			return err
		}
	}
	for _, channel := range cfg.Channels {
		if err := client.JoinChannel(channel); err != nil {
			return err
		}
	}

	err = client.Run(ctx)
	sdnotify.Stopping()
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("received shutdown signal")
		return nil
	}
	return err
}

func writePIDFile(dataDir string) error {
	return os.WriteFile(filepath.Join(dataDir, "pid.txt"), []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
