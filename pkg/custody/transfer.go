package custody

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransferRequest asks for one token to leave custody for a companion's wallet.
type TransferRequest struct {
	TokenID         TokenID
	CompanionWallet string `validate:"required,eth_addr"`

	// IdempotencyKey is optional. A confirmed transfer is replayed for a repeated key.
	IdempotencyKey string
}

// Receipt is the result of a confirmed transfer.
type Receipt struct {
	Success         bool    `json:"success"`
	TransactionHash string  `json:"transactionHash"`
	TokenID         TokenID `json:"tokenId"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	BlockNumber     uint64  `json:"blockNumber"`
}

// PendingTx is a signed transfer that was accepted by the node.
type PendingTx struct {
	Tx          *types.Transaction
	From        common.Address
	To          common.Address
	Nonce       uint64
	SubmittedAt time.Time
}

func (p *PendingTx) Hash() common.Hash {
	return p.Tx.Hash()
}

// Confirmation is the mined outcome of a PendingTx.
type Confirmation struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}

// CustodyStatus reports who currently holds a token.
type CustodyStatus struct {
	TokenID     TokenID `json:"tokenId"`
	Owner       string  `json:"owner"`
	AdminWallet string  `json:"adminWallet"`
	InCustody   bool    `json:"inCustody"`
}

// JournalEntry is a receipt as stored by the journal.
type JournalEntry struct {
	ID              string    `json:"id"`
	TransactionHash string    `json:"transactionHash"`
	TokenID         string    `json:"tokenId"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	BlockNumber     uint64    `json:"blockNumber"`
	CreatedAt       time.Time `json:"createdAt"`
}
