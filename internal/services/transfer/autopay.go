package transfer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/notification"

	"github.com/sirupsen/logrus"
)

// RunAutoPay pays every due bill whose amount is within the biller's
// auto-pay limit. Bills above the limit, or that the wallet cannot cover,
// are left for the user with an action-required notification.
func (s *service) RunAutoPay(ctx context.Context, now time.Time) (AutoPayReport, error) {
	var report AutoPayReport

	billers, err := s.store.Billers().ListAutoPayCandidates(ctx)
	if err != nil {
		return report, err
	}

	for i := range billers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		b := &billers[i]
		if !b.HasUnpaidBill() {
			continue
		}
		due := b.DueAmount.Decimal
		log := logger.WithFields(logrus.Fields{
			"biller_id": b.ID,
			"user_id":   b.UserID,
			"due":       due.StringFixed(2),
		})

		if !b.AutoPayLimit.Valid || due.GreaterThan(b.AutoPayLimit.Decimal) {
			log.Info("auto-pay skipped: due amount above limit")
			s.actionRequired(ctx, b, notification.ReasonLimitExceeded)
			report.Skipped++
			continue
		}

		key := autoPayKey(b, now)
		prior, found, err := s.replay(ctx, b.UserID, key)
		if err != nil {
			log.WithError(err).Error("auto-pay lookup failed")
			report.Failed++
			continue
		}
		if found {
			s.settlePrior(ctx, log, b, prior, &report)
			continue
		}

		tx, err := s.PayBill(ctx, PayBillRequest{
			UserID:         b.UserID,
			BillerID:       b.ID,
			Amount:         due,
			Credential:     Credential{Action: authz.ActionAutoPay, Secret: strconv.FormatUint(uint64(b.ID), 10)},
			IdempotencyKey: key,
		})
		switch {
		case err == nil && paysBill(tx, b):
			report.Paid++
		case err == nil:
			log.WithField("reference", tx.Reference).Warn("auto-pay answered with an entry for another bill")
			s.actionRequired(ctx, b, notification.ReasonPaymentFailed)
			report.Failed++
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			log.Info("auto-pay skipped: insufficient funds")
			s.actionRequired(ctx, b, notification.ReasonInsufficientFunds)
			report.Failed++
		case apperrors.KindOf(err) == apperrors.KindPartialFailureReversed:
			log.Warn("auto-pay rejected by payee")
			s.actionRequired(ctx, b, notification.ReasonPaymentFailed)
			report.Failed++
		default:
			log.WithError(err).Error("auto-pay failed")
			report.Failed++
		}
	}

	logger.WithFields(logrus.Fields{
		"paid":    report.Paid,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("auto-pay sweep finished")
	return report, nil
}

// autoPayKey identifies one bill: its number (or due date when the biller
// sends none) and the amount due.
func autoPayKey(b *models.Biller, now time.Time) string {
	bill := b.BillNumber
	if bill == "" {
		day := now
		if b.DueDate != nil {
			day = *b.DueDate
		}
		bill = day.Format("2006-01-02")
	}
	return fmt.Sprintf("autopay:%d:%s:%s", b.ID, bill, b.DueAmount.Decimal.StringFixed(2))
}

// paysBill reports whether tx is a completed payment of the biller's current due.
func paysBill(tx *models.Transaction, b *models.Biller) bool {
	if tx == nil || tx.Status != models.TransactionStatusCompleted || tx.Metadata.BillPayment == nil {
		return false
	}
	return tx.Metadata.BillPayment.BillerID == b.ID &&
		tx.Metadata.BillPayment.BillNumber == b.BillNumber &&
		tx.Amount.Equal(b.DueAmount.Decimal)
}

// settlePrior handles a bill the sweep has already attempted. A bill that was
// paid but reported again is cleared; a failed attempt stays with the user,
// who was notified when it failed.
func (s *service) settlePrior(ctx context.Context, log *logrus.Entry, b *models.Biller, prior *models.Transaction, report *AutoPayReport) {
	log = log.WithFields(logrus.Fields{"reference": prior.Reference, "status": prior.Status})
	switch {
	case paysBill(prior, b):
		if err := s.store.Billers().ClearDue(ctx, b.ID, b.BillNumber); err != nil {
			log.WithError(err).Error("could not clear a bill that is already paid")
			report.Failed++
			return
		}
		log.Info("auto-pay: bill already paid")
		report.Paid++
	case prior.Status == models.TransactionStatusPending:
		log.Info("auto-pay: payment still in flight")
	default:
		log.Info("auto-pay: earlier attempt did not pay this bill")
		report.Failed++
	}
}

func (s *service) actionRequired(ctx context.Context, b *models.Biller, reason string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.ActionRequired(ctx, notification.ActionRequiredEvent{
		UserID:   b.UserID,
		BillerID: b.ID,
		Reason:   reason,
		Amount:   b.DueAmount.Decimal,
		DueDate:  b.DueDate,
	})
	if err != nil {
		logger.WithField("biller_id", b.ID).Warnf("action-required notification failed: %v", err)
	}
}
