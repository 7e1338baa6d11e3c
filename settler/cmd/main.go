package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	lcdquery "github.com/Cogwheel-Validator/spectra-settler/settler/lcd_query"
	"github.com/Cogwheel-Validator/spectra-settler/settler/rpc"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the RPC and LCD packages
	rpc.SetLogger(log.With().Str("component", "rpc").Logger())
	lcdquery.SetLogger(log)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
