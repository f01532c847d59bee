package main

import (
	"fmt"

	"github.com/filecoin-project/go-lossy"
	"github.com/filecoin-project/go-lossy/direction"
	"github.com/filecoin-project/go-lossy/latency"
	"github.com/urfave/cli/v2"
)

var latencyFlag = &cli.StringFlag{
	Name: "latency",
	Usage: "the base latency model of each direction: " +
		"'fixed' for the midpoint of the configured range, " +
		"'lognormal' for a long tail above the minimum with the midpoint as median, " +
		"or 'zipf' for samples concentrated near the minimum and bounded by the maximum",
	Value: "fixed",
}

// latencyOptions returns the Conn options that replace the base latency of
// both directions with the named model.
func latencyOptions(kind string, cfg lossy.Config) ([]lossy.Option, error) {
	if kind == "fixed" {
		return nil, nil
	}
	outgoing, err := latencyModel(kind, cfg.Outgoing)
	if err != nil {
		return nil, err
	}
	incoming, err := latencyModel(kind, cfg.Incoming)
	if err != nil {
		return nil, err
	}
	return []lossy.Option{
		lossy.WithOutgoingOptions(direction.WithLatencyModel(outgoing)),
		lossy.WithIncomingOptions(direction.WithLatencyModel(incoming)),
	}, nil
}

func latencyModel(kind string, cfg direction.Config) (latency.Model, error) {
	spread := cfg.MaxLatency - cfg.MinLatency
	var (
		model latency.Model
		err   error
	)
	switch kind {
	case "lognormal":
		model, err = latency.NewLogNormal(cfg.Seed, spread/2)
	case "zipf":
		model, err = latency.NewZipf(cfg.Seed, 1.5, 1, spread)
	default:
		return nil, fmt.Errorf("unknown latency model: %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s latency model: %w", kind, err)
	}
	return latency.Offset{Base: cfg.MinLatency, Model: model}, nil
}
