package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/apppanel/apiclient-core/auth"
	"github.com/apppanel/apiclient-core/config"
	"github.com/apppanel/apiclient-core/models"
	"github.com/apppanel/apiclient-core/repository"
	"github.com/apppanel/apiclient-core/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	method := flag.String("method", "GET", "HTTP method")
	path := flag.String("path", "/", "endpoint path, resolved against APICLIENT_BASE_URL")
	body := flag.String("body", "", "JSON request body")
	recent := flag.Int("recent", 0, "print the N most recent journal entries instead of sending")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)
	log.Debug().Msgf("Config loaded:%s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var journal repository.ExchangeRepository
	if cfg.JournalEnabled {
		journal, err = openJournal(cfg.JournalPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.JournalPath).Msg("Failed to open journal")
		}
	}

	if *recent > 0 {
		if journal == nil {
			log.Fatal().Msg("Journal is disabled, set APICLIENT_JOURNAL_ENABLED=true")
		}
		printRecent(ctx, journal, *recent)
		return
	}

	opts := []service.Option{service.WithObservers(service.NewLogObserver(log.Logger))}
	if journal != nil {
		opts = append(opts, service.WithObservers(service.NewJournalObserver(journal)))
	}
	if cfg.AuthToken != "" {
		opts = append(opts, service.WithTokenProvider(auth.NewStaticTokenProvider(cfg.AuthToken)))
	}

	client, err := service.NewClient(*cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}

	req := models.Request{
		Method: strings.ToUpper(*method),
		Path:   *path,
	}
	if *body != "" {
		req.Body = json.RawMessage(*body)
	}

	data, err := service.Send[json.RawMessage](ctx, client, req).Get()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println(service.PrettyJSON(data))
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func openJournal(path string) (repository.ExchangeRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewExchangeRepository(db), nil
}

func printRecent(ctx context.Context, journal repository.ExchangeRepository, limit int) {
	rows, err := journal.Recent(ctx, limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read journal")
	}
	for _, row := range rows {
		status := fmt.Sprint(row.StatusCode)
		if row.ErrorKind != "" {
			status += " " + row.ErrorKind + ": " + row.ErrorMessage
		}
		fmt.Printf("%s  %-6s %s  %s  (%dms)\n",
			row.CreatedAt.Format(time.RFC3339), row.Method, row.URL, status, row.DurationMs)
	}
}
