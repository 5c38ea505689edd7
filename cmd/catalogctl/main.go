// Package main утилита catalogctl: запросы к gRPC сервису каталога CineVault из командной строки.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	catalog "cinevault/internal/grpc"
	"cinevault/internal/logging"
)

var version = "dev"

// dialFunc открывает клиент каталога по адресу.
type dialFunc func(addr string, logger *slog.Logger) (*catalog.Client, error)

type existsResult struct {
	MovieID int64 `json:"movie_id"`
	Exists  bool  `json:"exists"`
}

func main() {
	app := newApp(os.Stdout, func(addr string, logger *slog.Logger) (*catalog.Client, error) {
		return catalog.NewClient(addr, logger)
	})
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer, dial dialFunc) *cli.Command {
	return &cli.Command{
		Name:    "catalogctl",
		Version: version,
		Usage:   "Query the CineVault catalog gRPC service",
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "localhost:9090",
				Usage:   "catalog gRPC address",
				Sources: cli.EnvVars("CATALOG_GRPC_ADDR"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level for stderr output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "movie-exists",
				Usage:     "Check that a movie exists",
				ArgsUsage: "<id>",
				Action: clientAction(out, dial, func(ctx context.Context, c *catalog.Client, id int64) (any, error) {
					exists, err := c.CheckMovieExists(ctx, id)
					if err != nil {
						return nil, err
					}
					return existsResult{MovieID: id, Exists: exists}, nil
				}),
			},
			{
				Name:      "movie",
				Usage:     "Show movie info with rating aggregates",
				ArgsUsage: "<id>",
				Action: clientAction(out, dial, func(ctx context.Context, c *catalog.Client, id int64) (any, error) {
					return c.GetMovieInfo(ctx, id)
				}),
			},
			{
				Name:      "user",
				Usage:     "Show user info",
				ArgsUsage: "<id>",
				Action: clientAction(out, dial, func(ctx context.Context, c *catalog.Client, id int64) (any, error) {
					return c.GetUserInfo(ctx, id)
				}),
			},
		},
	}
}

// clientAction разбирает id, открывает клиент, выполняет вызов и печатает результат как JSON.
func clientAction(out io.Writer, dial dialFunc, call func(ctx context.Context, c *catalog.Client, id int64) (any, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		raw := cmd.Args().First()
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", raw)
		}

		logger, closer, err := logging.NewWithWriter(logging.Config{Level: cmd.String("log-level")}, os.Stderr)
		if err != nil {
			return err
		}
		defer closer.Close()

		client, err := dial(cmd.String("addr"), logger)
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := call(ctx, client, id)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}
