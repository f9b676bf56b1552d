package transfer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/notification"
	"oruswallet/internal/services/otp"
	"oruswallet/internal/services/settlement"
	"oruswallet/internal/services/transfer"
	"oruswallet/internal/services/wallet"
	"oruswallet/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPIN = "4321"

type recordingNotifier struct {
	mu      sync.Mutex
	updates []*models.Transaction
	actions []notification.ActionRequiredEvent
}

func (n *recordingNotifier) TransactionUpdated(_ context.Context, tx *models.Transaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, tx)
	return nil
}

func (n *recordingNotifier) ActionRequired(_ context.Context, e notification.ActionRequiredEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, e)
	return nil
}

func (n *recordingNotifier) OTPIssued(context.Context, string, models.OTPPurpose, string) error {
	return nil
}

func (n *recordingNotifier) actionReasons() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, a := range n.actions {
		out = append(out, a.Reason)
	}
	return out
}

type fakePayee struct {
	mu    sync.Mutex
	err   error
	calls []settlement.PayoutRequest
}

func (p *fakePayee) Pay(_ context.Context, req settlement.PayoutRequest) (settlement.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return settlement.Receipt{}, p.err
	}
	return settlement.Receipt{ExternalRef: "PAYEE-1"}, nil
}

type fakeCollector struct {
	err   error
	calls []settlement.FundingRequest
}

func (c *fakeCollector) Collect(_ context.Context, req settlement.FundingRequest) (settlement.Receipt, error) {
	c.calls = append(c.calls, req)
	if c.err != nil {
		return settlement.Receipt{}, c.err
	}
	return settlement.Receipt{ExternalRef: "COLLECT-1"}, nil
}

type fixture struct {
	db        *gorm.DB
	store     repositories.Store
	ledger    ledger.Service
	gate      authz.Gate
	engine    transfer.Service
	payee     *fakePayee
	collector *fakeCollector
	notifier  *recordingNotifier
	clock     *testutil.Clock
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	store := repositories.NewStore(db)

	f := &fixture{
		db:        db,
		store:     store,
		ledger:    ledger.NewService(store, nil),
		payee:     &fakePayee{},
		collector: &fakeCollector{},
		notifier:  &recordingNotifier{},
		clock:     &testutil.Clock{T: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
	}
	f.gate = authz.NewGate(store, otp.NewService(rdb, nil), "test-secret")
	f.engine = transfer.NewService(store, f.ledger, f.gate, wallet.NewService(store),
		f.collector, f.payee, f.notifier, transfer.WithClock(f.clock.Now))
	return f
}

// user creates an active user with a wallet and the test PIN.
func (f *fixture) user(t *testing.T, phone, balance string) *models.User {
	t.Helper()
	u := testutil.CreateUser(t, f.db, phone, balance)
	require.NoError(t, f.gate.SetPIN(context.Background(), u.ID, testPIN))
	return u
}

func (f *fixture) balance(t *testing.T, userID uint) decimal.Decimal {
	return testutil.Balance(t, f.db, userID)
}

func (f *fixture) entries(t *testing.T, userID uint) []models.Transaction {
	t.Helper()
	list, _, err := f.ledger.ListByUser(context.Background(), userID, repositories.TransactionFilter{}, 100, 0)
	require.NoError(t, err)
	return list
}

func pin() transfer.Credential {
	return transfer.Credential{Action: authz.ActionPayment, Secret: testPIN}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
