package service

import (
	"context"
	"time"

	"github.com/apppanel/apiclient-core/models"
	"github.com/apppanel/apiclient-core/repository"
	"github.com/rs/zerolog/log"
)

const journalWriteTimeout = 5 * time.Second

// JournalObserver records every resolved exchange in the network journal.
type JournalObserver struct {
	repo repository.ExchangeRepository
}

func NewJournalObserver(repo repository.ExchangeRepository) *JournalObserver {
	return &JournalObserver{repo: repo}
}

func (o *JournalObserver) WillSend(context.Context, Exchange) {}

func (o *JournalObserver) DidReceive(ctx context.Context, exchange Exchange) {
	// A canceled request is still journaled.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWriteTimeout)
	defer cancel()

	row := &models.ExchangeDB{
		ID:           exchange.ID,
		Method:       exchange.Method,
		URL:          exchange.URL,
		Curl:         exchange.Curl,
		RequestBody:  string(exchange.RequestBody),
		StatusCode:   exchange.StatusCode,
		ResponseBody: string(exchange.ResponseBody),
		DurationMs:   exchange.Duration.Milliseconds(),
	}
	if exchange.Err != nil {
		row.ErrorKind = exchange.Err.Kind.String()
		row.ErrorMessage = exchange.Err.Message()
	}

	if err := o.repo.Save(ctx, row); err != nil {
		log.Warn().
			Err(err).
			Str("exchange_id", exchange.ID.String()).
			Msg("Exchange not journaled")
	}
}
