package assistant

import (
	"GutAssistant/internal/entity"
	"GutAssistant/pkg/nlp"
	"GutAssistant/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 27, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestAssistant(t *testing.T, store Store) *Assistant {
	t.Helper()
	processor := nlp.NewProcessor(nlp.NewConfidenceEstimatorWithSource(func() float64 { return 0.5 }))
	return New(quietLogger(), processor, store, utils.New(), WithClock(newStepClock().Now))
}

func strPtr(s string) *string { return &s }

func intentPtr(i entity.IntentLabel) *entity.IntentLabel { return &i }

type failingStore struct {
	*MemoryStore
	lookupErr error
	recordErr error
}

func (f *failingStore) LookupOverride(ctx context.Context, signature string) (entity.ResponsePayload, bool, error) {
	if f.lookupErr != nil {
		return entity.ResponsePayload{}, false, f.lookupErr
	}
	return f.MemoryStore.LookupOverride(ctx, signature)
}

func (f *failingStore) RecordFeedback(ctx context.Context, record entity.FeedbackRecord) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	return f.MemoryStore.RecordFeedback(ctx, record)
}

var errStoreDown = errors.New("store unavailable")
