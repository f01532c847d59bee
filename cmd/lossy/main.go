package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("lossy/cmd")

func main() {
	app := &cli.App{
		Name:  "lossy",
		Usage: "impairs datagram traffic with delay, loss, duplication, reordering and corruption",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "config",
				Value: "lossy.json",
				Usage: "path to the impairment config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level of lossy loggers",
			},
		},
		Before: func(c *cli.Context) error {
			for _, name := range []string{"lossy", "lossy/cmd"} {
				if err := logging.SetLogLevel(name, c.String("log-level")); err != nil {
					return fmt.Errorf("setting log level: %w", err)
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			&proxyCmd,
			&simCmd,
			&configCmd,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %+v\n", err)
		os.Exit(1)
	}
}
