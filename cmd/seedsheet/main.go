package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/repstats/repstats/internal/seedsheet"
	"github.com/repstats/repstats/pkg/logger"
)

// Default flags.
const (
	defaultAddr       = ":9090"
	defaultSeed       = 1
	defaultYears      = 3
	readHeaderTimeout = 5 * time.Second
)

func main() {
	var (
		addr         = flag.String("addr", defaultAddr, "Listen address for the fake values API")
		seed         = flag.Int64("seed", defaultSeed, "Corpus generation seed")
		years        = flag.Int("years", defaultYears, "Years of history to generate, ending today")
		participants = flag.String("participants", "", "Comma-separated roster (default: built-in names)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get().Named("seedsheet")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := seedsheet.Config{
		Seed:  *seed,
		Start: time.Now().AddDate(-*years, 0, 0),
		End:   time.Now(),
	}
	if *participants != "" {
		cfg.Participants = strings.Split(*participants, ",")
	}

	corpus := seedsheet.Generate(cfg)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           seedsheet.NewServer(corpus, log).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "serving fake values API",
			logger.String("addr", *addr),
			logger.Int("years", *years),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("seedsheet server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info(context.Background(), "seedsheet stopped")
}
