package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/chatoptimize/chatgraph/pkg/cmd"
	"github.com/chatoptimize/chatgraph/pkg/log"
	"github.com/chatoptimize/chatgraph/pkg/otelhelper"
)

const defaultPort = 8188

func main() {
	logger := log.WithModule("server")

	command := &cli.Command{
		Name:                  "chatgraph-server",
		Usage:                 "Serve the chat backend the canvas talks to",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "session-storage-url",
				Usage:   "Session storage URL (empty for in-memory, redis:// for redis)",
				Sources: cli.EnvVars("SESSION_STORAGE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (memory)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Chatgraph API")

			if command.Bool("tracing") {
				if _, err := otelhelper.NewTracer(ctx, "chatgraph-server"); err != nil {
					logger.ErrorContext(ctx, "Failed to initialize tracer", "error", err)
				}
			}

			sessions, err := cmd.NewSessionStore(command.String("session-storage-url"))
			if err != nil {
				return err
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, sessions, eventBus)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
