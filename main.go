package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/fourrow-backend/internal"
	"github.com/rocketscienceinc/fourrow-backend/internal/config"
)

// main - is the entry point of the application. It parses the command line and runs the chosen command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fourrow: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	serve := &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP and websocket server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conf := initConfig(cmd.String("config"))

			return app.RunApp(ctx, initLogger(conf), conf)
		},
	}

	return &cli.Command{
		Name:  "fourrow",
		Usage: "5x5 line-scoring board game",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "path to the yaml config file",
				Sources: cli.EnvVars("FOURROW_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serve,
			{
				Name:  "play",
				Usage: "play a hot-seat game in the terminal",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					conf := initConfig(cmd.String("config"))

					return app.RunConsole(ctx, initLogger(conf), conf, os.Stdin, os.Stdout)
				},
			},
		},
		DefaultCommand: serve.Name,
	}
}

// initialize config.
func initConfig(path string) *config.Config {
	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// console play writes the board to stdout
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
