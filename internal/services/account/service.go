package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var accountNumberRegex = regexp.MustCompile(`^[0-9]{9,18}$`)

type service struct {
	store repositories.Store
}

// NewService creates the account directory.
func NewService(store repositories.Store) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store}
}

func (s *service) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetWallet always reads the balance from the database.
func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

func (s *service) ListBankAccounts(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	return s.store.BankAccounts().ListByUser(ctx, userID)
}

func (s *service) GetBankAccount(ctx context.Context, userID, accountID uint) (*models.BankAccount, error) {
	acct, err := s.store.BankAccounts().GetByID(ctx, userID, accountID)
	return acct, mapBankErr(err)
}

func (s *service) DefaultBankAccount(ctx context.Context, userID uint) (*models.BankAccount, error) {
	acct, err := s.store.BankAccounts().GetDefault(ctx, userID)
	if errors.Is(err, repositories.ErrBankAccountNotFound) {
		return nil, apperrors.ErrNoDefaultBankAccount
	}
	return acct, err
}

func (s *service) LinkBankAccount(ctx context.Context, userID uint, in BankAccountInput) (*models.BankAccount, error) {
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.IFSC = strings.ToUpper(strings.TrimSpace(in.IFSC))
	if !accountNumberRegex.MatchString(in.AccountNumber) {
		return nil, apperrors.Validation("account number must be 9-18 digits")
	}
	if !validation.IFSC(in.IFSC) {
		return nil, apperrors.Validation("invalid IFSC code")
	}
	if strings.TrimSpace(in.BankName) == "" || strings.TrimSpace(in.HolderName) == "" {
		return nil, apperrors.Validation("bank name and account holder are required")
	}

	acct := &models.BankAccount{
		UserID:        userID,
		AccountNumber: in.AccountNumber,
		IFSC:          in.IFSC,
		BankName:      strings.TrimSpace(in.BankName),
		HolderName:    strings.TrimSpace(in.HolderName),
	}

	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		existing, err := tx.BankAccounts().LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.BankAccounts().Create(ctx, acct); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return apperrors.ErrDuplicateBankAccount
			}
			return err
		}
		if len(existing) == 0 || in.MakeDefault {
			if err := tx.BankAccounts().SetDefault(ctx, userID, acct.ID); err != nil {
				return err
			}
			acct.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"user_id": userID, "bank_account_id": acct.ID, "default": acct.IsDefault}).Info("bank account linked")
	return acct, nil
}

// SetDefaultBankAccount is atomic: no reader sees zero or two defaults.
func (s *service) SetDefaultBankAccount(ctx context.Context, userID, accountID uint) error {
	return s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		accts, err := tx.BankAccounts().LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if !containsAccount(accts, accountID) {
			return apperrors.ErrBankAccountNotFound
		}
		return mapBankErr(tx.BankAccounts().SetDefault(ctx, userID, accountID))
	})
}

// UnlinkBankAccount promotes the newest remaining account when the default is removed.
func (s *service) UnlinkBankAccount(ctx context.Context, userID, accountID uint) error {
	return s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		accts, err := tx.BankAccounts().LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		var removed *models.BankAccount
		for i := range accts {
			if accts[i].ID == accountID {
				removed = &accts[i]
			}
		}
		if removed == nil {
			return apperrors.ErrBankAccountNotFound
		}
		if err := tx.BankAccounts().Delete(ctx, userID, accountID); err != nil {
			return mapBankErr(err)
		}
		if !removed.IsDefault {
			return nil
		}
		for _, acct := range accts {
			if acct.ID != accountID {
				return tx.BankAccounts().SetDefault(ctx, userID, acct.ID)
			}
		}
		return nil
	})
}

func (s *service) ListBillers(ctx context.Context, userID uint) ([]models.Biller, error) {
	return s.store.Billers().ListByUser(ctx, userID)
}

func (s *service) GetBiller(ctx context.Context, userID, billerID uint) (*models.Biller, error) {
	biller, err := s.store.Billers().GetByID(ctx, userID, billerID)
	if errors.Is(err, repositories.ErrBillerNotFound) {
		return nil, apperrors.ErrBillerNotFound
	}
	return biller, err
}

// UpsertBiller merges mutable attributes into an existing biller with the same key.
// A different registered name under the same key is rejected as a duplicate.
func (s *service) UpsertBiller(ctx context.Context, userID uint, key BillerKey, attrs models.BillerAttrs) (*models.Biller, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if err := validateAttrs(attrs); err != nil {
		return nil, err
	}

	var biller *models.Biller
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		existing, err := tx.Billers().GetByKey(ctx, userID, key.BillType, key.Provider, key.ConsumerID)
		if errors.Is(err, repositories.ErrBillerNotFound) {
			biller, err = createBiller(ctx, tx, userID, key, attrs)
			return err
		}
		if err != nil {
			return err
		}

		if attrs.RegisteredName != nil && existing.RegisteredName != "" &&
			!strings.EqualFold(existing.RegisteredName, strings.TrimSpace(*attrs.RegisteredName)) {
			return apperrors.ErrDuplicateBiller
		}
		merge(existing, attrs)
		if err := checkAutoPay(existing); err != nil {
			return err
		}
		if err := tx.Billers().Save(ctx, existing); err != nil {
			return err
		}
		biller = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"biller_id": biller.ID,
		"auto_pay":  biller.AutoPayEnabled,
	}).Info("biller saved")
	return biller, nil
}

// CreateBiller refuses to touch an existing biller with the same key.
func (s *service) CreateBiller(ctx context.Context, userID uint, key BillerKey, attrs models.BillerAttrs) (*models.Biller, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if err := validateAttrs(attrs); err != nil {
		return nil, err
	}
	return createBiller(ctx, s.store, userID, key, attrs)
}

func (s *service) RecordBillDue(ctx context.Context, userID, billerID uint, amount decimal.Decimal, dueDate time.Time, billNumber string) error {
	if err := validation.Amount(amount); err != nil {
		return err
	}
	if _, err := s.GetBiller(ctx, userID, billerID); err != nil {
		return err
	}
	return s.store.Billers().RecordDue(ctx, billerID, amount, dueDate, billNumber)
}

func createBiller(ctx context.Context, store repositories.Store, userID uint, key BillerKey, attrs models.BillerAttrs) (*models.Biller, error) {
	biller := &models.Biller{
		UserID:     userID,
		BillType:   key.BillType,
		Provider:   key.Provider,
		ConsumerID: key.ConsumerID,
	}
	merge(biller, attrs)
	if attrs.RegisteredName != nil {
		biller.RegisteredName = strings.TrimSpace(*attrs.RegisteredName)
	}
	if err := checkAutoPay(biller); err != nil {
		return nil, err
	}
	if err := store.Billers().Create(ctx, biller); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperrors.ErrDuplicateBiller
		}
		return nil, err
	}
	return biller, nil
}

func merge(b *models.Biller, attrs models.BillerAttrs) {
	if attrs.RegisteredName != nil && b.RegisteredName == "" {
		b.RegisteredName = strings.TrimSpace(*attrs.RegisteredName)
	}
	if attrs.Nickname != nil {
		b.Nickname = strings.TrimSpace(*attrs.Nickname)
	}
	if attrs.AutoPayEnabled != nil {
		b.AutoPayEnabled = *attrs.AutoPayEnabled
	}
	if attrs.AutoPayLimit != nil {
		b.AutoPayLimit = decimal.NewNullDecimal(*attrs.AutoPayLimit)
	}
}

func checkAutoPay(b *models.Biller) error {
	if b.AutoPayEnabled && !b.AutoPayLimit.Valid {
		return apperrors.Validation("auto-pay needs a limit")
	}
	return nil
}

func validateAttrs(attrs models.BillerAttrs) error {
	if attrs.AutoPayLimit != nil {
		if err := validation.Amount(*attrs.AutoPayLimit); err != nil {
			return apperrors.Validation("auto-pay limit must be a positive amount")
		}
	}
	return nil
}

func normalizeKey(key BillerKey) (BillerKey, error) {
	key.BillType = strings.ToLower(strings.TrimSpace(key.BillType))
	key.Provider = strings.TrimSpace(key.Provider)
	key.ConsumerID = strings.TrimSpace(key.ConsumerID)
	if key.BillType == "" || key.Provider == "" || key.ConsumerID == "" {
		return key, apperrors.Validation("bill type, provider and consumer id are required")
	}
	return key, nil
}

func containsAccount(accts []models.BankAccount, id uint) bool {
	for _, a := range accts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func mapBankErr(err error) error {
	if errors.Is(err, repositories.ErrBankAccountNotFound) {
		return apperrors.ErrBankAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("bank account: %w", err)
	}
	return nil
}
