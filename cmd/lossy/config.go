package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/filecoin-project/go-lossy"
	"github.com/urfave/cli/v2"
)

var configCmd = cli.Command{
	Name:  "config",
	Usage: "manages impairment config files",
	Subcommands: []*cli.Command{
		&configGenCmd,
		&configCheckCmd,
	},
}

var configGenCmd = cli.Command{
	Name:  "gen",
	Usage: "writes the default impairment config",
	Action: func(c *cli.Context) error {
		path := c.Path("config")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			return fmt.Errorf("opening config file for writing: %w", err)
		}
		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(lossy.DefaultConfig()); err != nil {
			_ = f.Close()
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing file: %w", err)
		}
		_, _ = fmt.Fprintf(c.App.Writer, "Wrote default config to %s\n", path)
		return nil
	},
}

var configCheckCmd = cli.Command{
	Name:  "check",
	Usage: "validates an impairment config file",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.Path("config"))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(c.App.Writer, "outgoing: %+v\nincoming: %+v\n", cfg.Outgoing, cfg.Incoming)
		return nil
	},
}

func loadConfig(path string) (lossy.Config, error) {
	var cfg lossy.Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening %s to load config: %w", path, err)
	}
	defer f.Close()
	if err := cfg.Unmarshal(f); err != nil {
		return cfg, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// loadConfigOrDefault loads the config at path, falling back on the default
// config if no such file exists.
func loadConfigOrDefault(path string) (lossy.Config, error) {
	cfg, err := loadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Infow("config file not found; using default config", "path", path)
		return lossy.DefaultConfig(), nil
	}
	return cfg, err
}
