package transfer

import (
	"oruswallet/internal/logger"

	"github.com/sirupsen/logrus"
)

// State is a step of a money-movement operation. Only ledger statuses are
// persisted; states are logged.
type State string

const (
	StateInitiated  State = "INITIATED"
	StateAuthorized State = "AUTHORIZED"
	StateDebited    State = "DEBITED"
	StateCredited   State = "CREDITED"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
	StateCancelled  State = "CANCELLED"
)

type tracker struct {
	entry *logrus.Entry
}

func track(op string, userID uint) *tracker {
	return &tracker{entry: logger.WithFields(logrus.Fields{"operation": op, "user_id": userID})}
}

func (t *tracker) withReference(ref string) {
	t.entry = t.entry.WithField("reference", ref)
}

func (t *tracker) to(state State) {
	t.entry.WithField("state", state).Info("money movement state changed")
}

func (t *tracker) failed(reason string) {
	t.entry.WithFields(logrus.Fields{"state": StateFailed, "reason": reason}).Warn("money movement failed")
}
