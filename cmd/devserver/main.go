package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/the-momentum/open-wearables-sync/internal/devserver"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	secret := flag.String("secret", "dev-secret", "JWT signing secret")
	apiKey := flag.String("api-key", "", "static API key accepted alongside bearer tokens")
	accessTTL := flag.Duration("access-ttl", 15*time.Minute, "access token lifetime")
	failEvery := flag.Int("fail-every", 0, "answer 503 to every Nth sync request (0 disables)")
	flag.Parse()

	log := logger.NewLogger("devserver")

	tokens := devserver.NewTokenIssuer(*secret, *accessTTL, 30*24*time.Hour)
	handler := devserver.NewHandler(devserver.Options{
		APIKey:    *apiKey,
		FailEvery: *failEvery,
	}, tokens, log)

	log.Info().Str("addr", *addr).Msg("devserver listening")
	if err := http.ListenAndServe(*addr, handler.Init()); err != nil {
		log.Fatal().Err(err).Msg("devserver stopped")
	}
}
