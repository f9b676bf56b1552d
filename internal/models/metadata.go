package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMetadataMismatch = errors.New("metadata payload does not match transaction type")

type TransferMetadata struct {
	RecipientID    uint   `json:"recipient_id"`
	RecipientName  string `json:"recipient_name,omitempty"`
	RecipientPhone string `json:"recipient_phone,omitempty"`
	Channel        string `json:"channel,omitempty"` // "wallet" or "qr"
}

type BillPaymentMetadata struct {
	BillerID   uint   `json:"biller_id"`
	BillType   string `json:"bill_type"`
	Provider   string `json:"provider"`
	ConsumerID string `json:"consumer_id"`
	BillNumber string `json:"bill_number,omitempty"`
	AutoPay    bool   `json:"auto_pay,omitempty"`
}

type RechargeMetadata struct {
	Operator     string `json:"operator"`
	MobileNumber string `json:"mobile_number"`
	Plan         string `json:"plan,omitempty"`
}

// BankMetadata is a snapshot of the bank account at the time of the operation.
type BankMetadata struct {
	AccountID           uint   `json:"account_id"`
	AccountNumberMasked string `json:"account_number"`
	IFSC                string `json:"ifsc"`
	BankName            string `json:"bank_name"`
	HolderName          string `json:"holder_name"`
}

type DepositMetadata struct {
	PaymentMethod string        `json:"payment_method"`
	ExternalRef   string        `json:"external_ref,omitempty"`
	Bank          *BankMetadata `json:"bank,omitempty"`
}

// Metadata is a tagged union keyed by Type. Exactly one payload matches Type.
type Metadata struct {
	Type        TransactionType      `json:"type"`
	Transfer    *TransferMetadata    `json:"transfer,omitempty"`
	BillPayment *BillPaymentMetadata `json:"bill_payment,omitempty"`
	Recharge    *RechargeMetadata    `json:"recharge,omitempty"`
	Withdrawal  *BankMetadata        `json:"withdrawal,omitempty"`
	Deposit     *DepositMetadata     `json:"deposit,omitempty"`
}

func NewTransferMetadata(m TransferMetadata) Metadata {
	return Metadata{Type: TransactionTypeTransfer, Transfer: &m}
}

func NewBillPaymentMetadata(m BillPaymentMetadata) Metadata {
	return Metadata{Type: TransactionTypeBillPayment, BillPayment: &m}
}

func NewRechargeMetadata(m RechargeMetadata) Metadata {
	return Metadata{Type: TransactionTypeRecharge, Recharge: &m}
}

func NewWithdrawalMetadata(m BankMetadata) Metadata {
	return Metadata{Type: TransactionTypeWithdrawal, Withdrawal: &m}
}

func NewDepositMetadata(m DepositMetadata) Metadata {
	return Metadata{Type: TransactionTypeDeposit, Deposit: &m}
}

// BankSnapshot copies the fields of a bank account that are kept in the ledger.
func BankSnapshot(acct *BankAccount) BankMetadata {
	return BankMetadata{
		AccountID:           acct.ID,
		AccountNumberMasked: acct.MaskedNumber(),
		IFSC:                acct.IFSC,
		BankName:            acct.BankName,
		HolderName:          acct.HolderName,
	}
}

// Validate checks that only the payload selected by Type is present.
func (m Metadata) Validate() error {
	set := 0
	var matched bool
	for t, present := range map[TransactionType]bool{
		TransactionTypeTransfer:    m.Transfer != nil,
		TransactionTypeBillPayment: m.BillPayment != nil,
		TransactionTypeRecharge:    m.Recharge != nil,
		TransactionTypeWithdrawal:  m.Withdrawal != nil,
		TransactionTypeDeposit:     m.Deposit != nil,
	} {
		if present {
			set++
			matched = matched || t == m.Type
		}
	}
	if set != 1 || !matched {
		return fmt.Errorf("%w: type %q", ErrMetadataMismatch, m.Type)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (m *Metadata) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	return json.Unmarshal(data, m)
}
