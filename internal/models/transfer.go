package models

import "time"

// PaymentMethod is how a transfer was settled.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "CASH"
	PaymentCard          PaymentMethod = "CARD"
	PaymentDigitalWallet PaymentMethod = "DIGITAL_WALLET"
	PaymentOther         PaymentMethod = "OTHER"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigitalWallet, PaymentOther:
		return true
	}
	return false
}

// TransferStatus is the settlement state of a transfer record.
type TransferStatus string

const (
	TransferPending TransferStatus = "PENDING"
	TransferPaid    TransferStatus = "PAID"
	TransferFailed  TransferStatus = "FAILED"
)

// LineItem is a single priced line on a transfer. UnitPrice is in the
// smallest currency unit.
type LineItem struct {
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

// TransferRecord is the immutable receipt written for a committed transfer.
// It embeds sender and receiver identity snapshots taken at transfer time
// rather than live account references, so reading transfers never requires
// a lookup against the account store.
type TransferRecord struct {
	ID            string          `json:"id"`
	From          AccountSnapshot `json:"from"`
	To            AccountSnapshot `json:"to"`
	Amount        int64           `json:"amount"`
	Description   string          `json:"description"`
	Business      string          `json:"business"`
	Items         []LineItem      `json:"items"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        TransferStatus  `json:"status"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TransferFilter narrows and pages a transfer listing. Nil range bounds are
// open-ended. Page is 1-based.
type TransferFilter struct {
	AccountID  string
	DateFrom   *time.Time
	DateTo     *time.Time
	AmountFrom *int64
	AmountTo   *int64
	Page       int
}

// TransfersPerPage is the fixed page size for transfer listings.
const TransfersPerPage = 10
