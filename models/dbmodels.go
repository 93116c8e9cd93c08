package models

import (
	"crypto/sha256"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxJournalBodyBytes caps the request and response bodies stored per exchange.
const MaxJournalBodyBytes = 64 * 1024

// ExchangeDB is one recorded request/response pair of the network journal.
type ExchangeDB struct {
	ID           uuid.UUID `gorm:"type:text;primaryKey"`
	Method       string    `gorm:"size:16;not null"`
	URL          string    `gorm:"not null"`
	Curl         string
	RequestBody  string
	StatusCode   int `gorm:"index"`
	ResponseBody string
	BodyHash     string `gorm:"size:64"`
	ErrorKind    string `gorm:"size:32;index"`
	ErrorMessage string
	DurationMs   int64
	CreatedAt    time.Time `gorm:"index"`
}

func (ExchangeDB) TableName() string {
	return "http_exchanges"
}

// BeforeCreate assigns an ID when missing, truncates bodies and computes the body hash.
func (e *ExchangeDB) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.RequestBody = truncateBody(e.RequestBody)
	e.ResponseBody = truncateBody(e.ResponseBody)
	e.BodyHash = e.ComputeBodyHash()
	return nil
}

// ComputeBodyHash hashes the response body so identical payloads can be spotted
// across exchanges without comparing the bodies.
func (e *ExchangeDB) ComputeBodyHash() string {
	hash := sha256.Sum256([]byte(e.ResponseBody))
	return fmt.Sprintf("%x", hash)
}

func truncateBody(body string) string {
	if len(body) <= MaxJournalBodyBytes {
		return body
	}
	n := MaxJournalBodyBytes
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n]
}
