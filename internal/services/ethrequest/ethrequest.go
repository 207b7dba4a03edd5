package ethrequest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/citizenwallet/custody/internal/backoff"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// geth reports reverted calls with this JSON-RPC code
	revertErrorCode = 3

	readBackoffStart = 200 * time.Millisecond
	readBackoffLimit = 2 * time.Second

	// upper bound for gas estimation, signing and broadcast of one transfer
	submitTimeout = 30 * time.Second
)

// Backend is the subset of an ethclient.Client the service needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

type EthService struct {
	client Backend

	contractAddr common.Address
	contract     *bind.BoundContract
	erc721       abi.ABI

	nonces      *nonceSequencer
	readRetries int
	readBackoff time.Duration
}

// NewEthService dials the node at endpoint. readRetries is the number of extra
// attempts for owner reads; transfers are never retried.
func NewEthService(ctx context.Context, endpoint string, contract common.Address, readRetries int) (*EthService, error) {
	rpc, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	return NewEthServiceWithBackend(ethclient.NewClient(rpc), contract, readRetries)
}

func NewEthServiceWithBackend(client Backend, contract common.Address, readRetries int) (*EthService, error) {
	parsed, err := parseERC721()
	if err != nil {
		return nil, err
	}

	if readRetries < 0 {
		readRetries = 0
	}

	return &EthService{
		client:       client,
		contractAddr: contract,
		contract:     bind.NewBoundContract(contract, parsed, client, client, client),
		erc721:       parsed,
		nonces:       newNonceSequencer(client.PendingNonceAt, submitTimeout),
		readRetries:  readRetries,
		readBackoff:  readBackoffStart,
	}, nil
}

func (e *EthService) Close() {
	e.client.Close()
}

func (e *EthService) ContractAddress() common.Address {
	return e.contractAddr
}

func (e *EthService) ChainID(ctx context.Context) (*big.Int, error) {
	return e.client.ChainID(ctx)
}

// OwnerOf reads the current owner of tokenID. Transport failures are retried with
// an exponential backoff; a revert or a zero owner means the token does not exist.
func (e *EthService) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	var owner common.Address

	b := backoff.NewExponential(e.readBackoff, readBackoffLimit)
	err := backoff.Retry(ctx, b, e.readRetries+1, func() (bool, error) {
		var out []interface{}
		err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodOwnerOf, tokenID)
		if err != nil {
			if isRevert(err) {
				return true, fmt.Errorf("%w: %v", custody.ErrTokenNotFound, err)
			}
			if errors.Is(err, bind.ErrNoCode) || ctx.Err() != nil {
				return true, err
			}
			return false, err
		}

		if len(out) != 1 {
			return true, fmt.Errorf("unexpected ownerOf output length %d", len(out))
		}

		addr, ok := out[0].(common.Address)
		if !ok {
			return true, errors.New("unexpected ownerOf output type")
		}

		if addr == (common.Address{}) {
			return true, custody.ErrTokenNotFound
		}

		owner = addr
		return false, nil
	})
	if err != nil {
		return common.Address{}, err
	}

	return owner, nil
}

// SubmitTransfer signs and broadcasts transferFrom(admin, to, tokenID). The nonce is
// taken from the sequencer so concurrent submissions never collide.
func (e *EthService) SubmitTransfer(ctx context.Context, from custody.Signer, to common.Address, tokenID *big.Int) (*custody.PendingTx, error) {
	opts, err := from.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}

	admin := from.Address()

	var tx *types.Transaction
	err = e.nonces.With(ctx, admin, func(ctx context.Context, nonce uint64) error {
		opts.Context = ctx
		opts.Nonce = new(big.Int).SetUint64(nonce)

		t, err := e.contract.Transact(opts, methodTransferFrom, admin, to, tokenID)
		if err != nil {
			return err
		}

		tx = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", custody.ErrSubmission, err)
	}

	return &custody.PendingTx{
		Tx:          tx,
		From:        admin,
		To:          to,
		Nonce:       tx.Nonce(),
		SubmittedAt: time.Now(),
	}, nil
}

// AwaitConfirmation blocks until tx is mined or ctx is done.
func (e *EthService) AwaitConfirmation(ctx context.Context, tx *custody.PendingTx) (*custody.Confirmation, error) {
	receipt, err := bind.WaitMined(ctx, e.client, tx.Tx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", custody.ErrUnconfirmed, err)
		}
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: status %d in block %s", custody.ErrReverted, receipt.Status, receipt.BlockNumber)
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	return &custody.Confirmation{
		TxHash:      tx.Hash(),
		BlockNumber: block,
		GasUsed:     receipt.GasUsed,
	}, nil
}

func isRevert(err error) bool {
	var rerr rpc.Error
	if errors.As(err, &rerr) && rerr.ErrorCode() == revertErrorCode {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
