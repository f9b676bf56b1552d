package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that must share one database transaction.
type Store interface {
	Users() UserRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	BankAccounts() BankAccountRepository
	Billers() BillerRepository

	// ExecuteInTransaction runs fn with a Store bound to a single transaction.
	// Inside fn only the given Store may be used.
	ExecuteInTransaction(ctx context.Context, fn func(Store) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository               { return NewUserRepository(s.db) }
func (s *store) Wallets() WalletRepository           { return NewWalletRepository(s.db) }
func (s *store) Transactions() TransactionRepository { return NewTransactionRepository(s.db) }
func (s *store) BankAccounts() BankAccountRepository { return NewBankAccountRepository(s.db) }
func (s *store) Billers() BillerRepository           { return NewBillerRepository(s.db) }

func (s *store) ExecuteInTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
