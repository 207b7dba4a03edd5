package custody

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ChainClient reads and moves tokens of the one custody contract.
type ChainClient interface {
	// OwnerOf returns ErrTokenNotFound when the token was never issued.
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)

	SubmitTransfer(ctx context.Context, from Signer, to common.Address, tokenID *big.Int) (*PendingTx, error)

	// AwaitConfirmation returns ErrReverted or ErrUnconfirmed (wrapped) on failure.
	AwaitConfirmation(ctx context.Context, tx *PendingTx) (*Confirmation, error)
}

// Signer is the admin signing authority.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}
