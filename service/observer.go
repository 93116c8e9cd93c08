package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/apppanel/apiclient-core/models"
	"github.com/apppanel/apiclient-core/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Exchange is what observers see of one request. Response fields are only set
// in DidReceive.
type Exchange struct {
	ID          uuid.UUID
	Method      string
	URL         string
	Curl        string
	RequestBody []byte

	StatusCode   int
	ResponseBody []byte
	Duration     time.Duration
	Err          *models.AppError
}

// Observer is notified before a request is sent and after it resolves.
// Observers cannot change the result of a request.
type Observer interface {
	WillSend(ctx context.Context, exchange Exchange)
	DidReceive(ctx context.Context, exchange Exchange)
}

func notifyWillSend(ctx context.Context, observers []Observer, exchange Exchange) {
	for _, o := range observers {
		safeNotify(func() { o.WillSend(ctx, exchange) })
	}
}

func notifyDidReceive(ctx context.Context, observers []Observer, exchange Exchange) {
	for _, o := range observers {
		safeNotify(func() { o.DidReceive(ctx, exchange) })
	}
}

func safeNotify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("panic", fmt.Sprint(r)).
				Msg("Observer panicked")
		}
	}()
	fn()
}

// CurlDescription renders req as an equivalent curl command. The bearer token is masked.
func CurlDescription(req *http.Request, body []byte) string {
	parts := []string{"curl", "-v"}
	if req.Method != http.MethodGet {
		parts = append(parts, "-X", req.Method)
	}

	keys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range req.Header[k] {
			if k == "Authorization" && strings.HasPrefix(v, "Bearer ") {
				v = "Bearer ***"
			}
			parts = append(parts, "-H", shellQuote(k+": "+v))
		}
	}

	if len(body) > 0 {
		parts = append(parts, "-d", shellQuote(string(body)))
	}

	parts = append(parts, shellQuote(req.URL.String()))
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// PrettyJSON indents body when it is JSON and returns it unchanged otherwise.
func PrettyJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}

// LogObserver writes every exchange to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) WillSend(_ context.Context, exchange Exchange) {
	host, err := utils.CleanHost(o.logger, exchange.URL)
	if err != nil {
		host = exchange.URL
	}
	o.logger.Debug().
		Str("exchange_id", exchange.ID.String()).
		Str("host", host).
		Str("curl", exchange.Curl).
		Msg("Sending request")
}

func (o *LogObserver) DidReceive(_ context.Context, exchange Exchange) {
	if exchange.Err != nil {
		o.logger.Warn().
			Str("exchange_id", exchange.ID.String()).
			Str("method", exchange.Method).
			Str("url", exchange.URL).
			Int("status", exchange.StatusCode).
			Dur("duration", exchange.Duration).
			Str("error_kind", exchange.Err.Kind.String()).
			Str("error", exchange.Err.Message()).
			Str("body", PrettyJSON(exchange.ResponseBody)).
			Msg("Request failed")
		return
	}

	o.logger.Debug().
		Str("exchange_id", exchange.ID.String()).
		Str("method", exchange.Method).
		Str("url", exchange.URL).
		Int("status", exchange.StatusCode).
		Dur("duration", exchange.Duration).
		Str("body", PrettyJSON(exchange.ResponseBody)).
		Msg("Received response")
}
