package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/housing-affordability-etl/internal/config"
	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

func TestMessageKey(t *testing.T) {
	assert.Equal(t, []byte("Łódzkie|2021"), MessageKey(domain.Lodzkie, 2021))
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	growth := 10
	record := domain.DerivedRecord{
		Region:          domain.Mazowieckie,
		Year:            2021,
		Price:           11000,
		Salary:          5500,
		Affordability:   0.5,
		PriceGrowthPct:  &growth,
		SalaryGrowthPct: &growth,
		PriceIndex:      110,
		SalaryIndex:     110,
	}

	msg, err := serializeToMessage(record, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("Mazowieckie|2021"), msg.Key)
	assert.Contains(t, string(msg.Value), `"price_growth_pct":10`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("Mazowieckie"), msg.Headers[0].Value)
	assert.Equal(t, "year", msg.Headers[1].Key)
	assert.Equal(t, []byte("2021"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var roundtrip domain.DerivedRecord
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, record, roundtrip)
}

func TestSerializeToMessage_FirstYearOmitsGrowth(t *testing.T) {
	msg, err := serializeToMessage(domain.DerivedRecord{Region: domain.Opolskie, Year: 2015, PriceIndex: 100, SalaryIndex: 100}, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), "growth")
}

func TestNewWriter_UsesBatchSettings(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaSinkTopic:     "housing-affordability-records",
		BatchSize:          25,
		BatchFlushInterval: 250 * time.Millisecond,
	}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	assert.Equal(t, "housing-affordability-records", w.writer.Topic)
	assert.Equal(t, 25, w.writer.BatchSize)
	assert.Equal(t, 250*time.Millisecond, w.writer.BatchTimeout)
}

func TestLoadBatch_EmptyDatasetIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaSinkTopic: "t"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	require.NoError(t, w.LoadBatch(context.Background(), domain.Dataset{}))
}
