// Command export_bets writes one station's bets for a date range to a
// spreadsheet file without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	mongorepo "github.com/ArowuTest/lasto-station-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/internal/utils"
	"github.com/ArowuTest/lasto-station-backend/pkg/mongodb"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type exportConfig struct {
	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" envDefault:"lasto-station"`
	Station  string `env:"EXPORT_STATION"`
	From     string `env:"EXPORT_FROM"`
	To       string `env:"EXPORT_TO"`
	Format   string `env:"EXPORT_FORMAT" envDefault:"xlsx"`
	Output   string `env:"EXPORT_OUTPUT"`
}

func parseConfig() (*exportConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &exportConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	flag.StringVar(&cfg.Station, "station", cfg.Station, "station label, empty for every station")
	flag.StringVar(&cfg.From, "from", cfg.From, "first draw date (YYYY-MM-DD)")
	flag.StringVar(&cfg.To, "to", cfg.To, "last draw date (YYYY-MM-DD), defaults to -from")
	flag.StringVar(&cfg.Format, "format", cfg.Format, "xlsx or csv")
	flag.StringVar(&cfg.Output, "o", cfg.Output, "output file")
	flag.Parse()

	if cfg.From == "" {
		return nil, fmt.Errorf("a start date is required (-from or EXPORT_FROM)")
	}
	if cfg.To == "" {
		cfg.To = cfg.From
	}
	if cfg.Output == "" {
		cfg.Output = fmt.Sprintf("bets-%s_%s.%s", cfg.From, cfg.To, cfg.Format)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.Database)

	// Read-only: nothing is published.
	hub := notify.SubscribeOnly(notify.NewHub(zl))
	reports := services.NewReportService(
		mongorepo.NewBetRepository(db, hub),
		mongorepo.NewUserRepository(db, hub),
		hub, zl)

	f, err := os.Create(cfg.Output)
	if err != nil {
		zl.Fatal("failed to create output file", zap.Error(err))
	}
	if err := reports.Export(ctx, f, cfg.Station, cfg.From, cfg.To, cfg.Format); err != nil {
		_ = f.Close()
		_ = os.Remove(cfg.Output)
		zl.Fatal("export failed", zap.Error(err))
	}
	if err := f.Close(); err != nil {
		zl.Fatal("failed to write output file", zap.Error(err))
	}

	zl.Info("export written",
		zap.String("file", cfg.Output),
		zap.String("station", cfg.Station),
		zap.String("contentType", utils.ContentType(cfg.Format)))
}
