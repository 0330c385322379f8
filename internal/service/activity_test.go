package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/logging"
)

type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Append(ctx context.Context, entry domain.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestLogActivityRecorder_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := NewLogActivityRecorder(zap.New(core))

	rec.Record(context.Background(), domain.ActivityEntry{Source: "llm", Status: domain.ActivityOK, Detail: "direct answer"})
	rec.Record(context.Background(), domain.ActivityEntry{Source: "security", Status: domain.ActivityWarn, Detail: "input rejected"})
	rec.Record(context.Background(), domain.ActivityEntry{Source: "calculate_installment", Status: domain.ActivityError, Detail: "TIMEOUT"})

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "security", entries[1].ContextMap()["source"])
		assert.Equal(t, "input rejected", entries[1].ContextMap()["detail"])
	}
}

func TestStoreActivityRecorder_PersistsEntry(t *testing.T) {
	repo := new(MockActivityLogRepository)
	entry := domain.ActivityEntry{Source: "rag", Status: domain.ActivityWarn, Detail: "index not ready"}
	repo.On("Append", mock.Anything, entry).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewStoreActivityRecorder(repo).Record(ctx, entry)

	repo.AssertExpectations(t)
	usedCtx := repo.Calls[0].Arguments.Get(0).(context.Context)
	assert.NoError(t, usedCtx.Err())
}

func TestStoreActivityRecorder_FailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logging.Set(zap.New(core))
	t.Cleanup(func() { logging.Set(nil) })

	repo := new(MockActivityLogRepository)
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("db down"))

	NewStoreActivityRecorder(repo).Record(context.Background(), domain.ActivityEntry{Source: "llm", Status: domain.ActivityOK})

	assert.Equal(t, 1, logs.FilterMessage("failed to persist activity entry").Len())
}

func TestMultiActivityRecorder(t *testing.T) {
	a, b := &memoryRecorder{}, &memoryRecorder{}
	entry := domain.ActivityEntry{Source: "llm", Status: domain.ActivityOK, Detail: "x"}

	MultiActivityRecorder{a, b}.Record(context.Background(), entry)

	assert.Equal(t, []domain.ActivityEntry{entry}, a.entries)
	assert.Equal(t, []domain.ActivityEntry{entry}, b.entries)
}
