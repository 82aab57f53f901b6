package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"loyalty/internal/domain/points"
	"loyalty/internal/domain/repository"
	"loyalty/internal/domain/service"
	"loyalty/internal/infra/codes"
	"loyalty/internal/infra/metrics"
	"loyalty/internal/infra/persistence/model"
	"loyalty/internal/infra/persistence/postgres"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the services against a private in-memory SQLite database,
// with in-process fakes for the external collaborators.
type testEnv struct {
	db          *gorm.DB
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	rewardRepo  repository.RewardRepository
	voucherRepo repository.VoucherRepository
	publisher   *fakePublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))

	return &testEnv{
		db:          db,
		txManager:   postgres.NewTransactionManager(db),
		accountRepo: postgres.NewAccountRepository(db),
		ledgerRepo:  postgres.NewLedgerRepository(db),
		rewardRepo:  postgres.NewRewardRepository(db),
		voucherRepo: postgres.NewVoucherRepository(db),
		publisher:   &fakePublisher{},
		metrics:     metrics.New(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// fakePublisher records published events in memory.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.LoyaltyEvent
}

func (p *fakePublisher) PublishLoyaltyEvent(_ context.Context, event *service.LoyaltyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) eventsOfType(eventType string) []*service.LoyaltyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []*service.LoyaltyEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}

	return out
}

// fakeProgramProvider serves a fixed program.
type fakeProgramProvider struct {
	program points.Program
}

func (p *fakeProgramProvider) ActiveProgram(_ context.Context) (points.Program, error) {
	return p.program, nil
}

// queuedCodeGenerator returns preloaded codes first, then falls back to the
// real generator.
type queuedCodeGenerator struct {
	queue    []string
	fallback service.VoucherCodeGenerator
}

func newQueuedCodeGenerator(queue ...string) *queuedCodeGenerator {
	return &queuedCodeGenerator{
		queue:    queue,
		fallback: codes.NewVoucherCodeGenerator(),
	}
}

func (g *queuedCodeGenerator) NewCode() (string, error) {
	if len(g.queue) > 0 {
		code := g.queue[0]
		g.queue = g.queue[1:]

		return code, nil
	}

	return g.fallback.NewCode()
}
