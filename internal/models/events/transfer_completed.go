package events

import "time"

// TopicTransferCompleted is the broker topic for committed transfers.
const TopicTransferCompleted = "transfer.completed"

// TransferCompleted is published after a transfer commits.
type TransferCompleted struct {
	TransferID    string    `json:"transfer_id"`
	FromAccountID string    `json:"from_account_id"`
	ToAccountID   string    `json:"to_account_id"`
	Amount        int64     `json:"amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}
