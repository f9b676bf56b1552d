package notification

import (
	"context"

	"oruswallet/internal/logger"
	"oruswallet/internal/models"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) TransactionUpdated(_ context.Context, tx *models.Transaction) error {
	logger.WithFields(logrus.Fields{
		"reference": tx.Reference,
		"user_id":   tx.UserID,
		"status":    tx.Status,
		"amount":    tx.Amount.StringFixed(2),
	}).Info("notify: transaction updated")
	return nil
}

func (n *LogNotifier) ActionRequired(_ context.Context, event ActionRequiredEvent) error {
	logger.WithFields(logrus.Fields{
		"user_id":   event.UserID,
		"biller_id": event.BillerID,
		"reason":    event.Reason,
		"amount":    event.Amount.StringFixed(2),
	}).Info("notify: action required")
	return nil
}

// OTPIssued only prints the code at debug level.
func (n *LogNotifier) OTPIssued(_ context.Context, identifier string, purpose models.OTPPurpose, code string) error {
	entry := logger.WithFields(logrus.Fields{"identifier": identifier, "purpose": purpose})
	entry.Info("notify: otp issued")
	entry.Debugf("otp code %s", code)
	return nil
}
