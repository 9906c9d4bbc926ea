package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pressure-monitor/config"
	"pressure-monitor/internal/channels"
	"pressure-monitor/internal/repositories"
	"pressure-monitor/internal/services/monitor"
	"pressure-monitor/internal/services/pressure"
	"pressure-monitor/pkg/observe"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Configuration errors are fatal and must surface before any network
	// activity. Everything after this point exits zero.
	cnf, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lat, lon, err := cnf.ParseCoordinates()
	if err != nil {
		log.Fatalf("invalid coordinates: %v", err)
	}

	writers := []io.Writer{os.Stdout}
	if hook := observe.NewSentryHook(cnf.AppEnv, cnf.AppName, cnf.SentryDSN, cnf.IsDevelopment()); hook != nil {
		writers = append(writers, hook)
	}
	l := observe.NewZapLogger(cnf.AppName, writers...)

	httpClient := &http.Client{
		Timeout: cnf.APITimeout(),
	}

	chans := channels.Build(cnf.EnabledChannels(), l, httpClient)
	if len(chans) == 0 {
		l.Fatal("no notification channels enabled, nothing to monitor for")
	}

	repo, err := repositories.NewOpenWeatherRepository(cnf.OpenWeatherAPIKey, cnf.MaxRetries, cnf.RetryDelay(), l, httpClient)
	if err != nil {
		l.Fatal("failed to create forecast repository", map[string]any{"err": err})
	}
	if cnf.OpenWeatherAPIURL != "" {
		repo.BaseURL = cnf.OpenWeatherAPIURL
	}

	analyzer := pressure.NewAnalyzer(cnf.ForecastIntervals, cnf.PressureThresholdMmHg, l)
	dispatcher := monitor.NewDispatcher(l)

	m := monitor.NewMonitor(repo, analyzer, dispatcher, chans, lat, lon, l)

	l.Info("pressure monitor initialized", map[string]any{
		"lat":            lat,
		"lon":            lon,
		"threshold_mmhg": cnf.PressureThresholdMmHg,
		"channels":       len(chans),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Run(ctx); err != nil {
		l.Error(err)
	}

	_ = l.Stop()
}
