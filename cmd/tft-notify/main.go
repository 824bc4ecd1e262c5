package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quanghng/discord-tft-notify/internal/bot"
	"github.com/quanghng/discord-tft-notify/internal/config"
	"github.com/quanghng/discord-tft-notify/internal/database"
	"github.com/quanghng/discord-tft-notify/internal/health"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	config.Load()
	database.Init(config.DatabasePath)
	defer database.Close()

	b, err := bot.New()
	if err != nil {
		log.Fatal().Err(err).Msg("could not create bot")
	}

	if err := b.Start(); err != nil {
		log.Fatal().Err(err).Msg("could not start bot")
	}

	healthServer := health.NewServer(config.HealthAddr, b)
	healthServer.Start()

	// Wait for a SIGINT or SIGTERM signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	healthServer.Stop()
	b.Stop()
}
