package mocks

import (
	"context"
	"math/big"

	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// ChainClient is a testify mock of custody.ChainClient. Return values may be given
// as functions with the same signature as the method to compute them per call.
type ChainClient struct {
	mock.Mock
}

func (_m *ChainClient) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	ret := _m.Called(ctx, tokenID)

	if rf, ok := ret.Get(0).(func(context.Context, *big.Int) (common.Address, error)); ok {
		return rf(ctx, tokenID)
	}

	var r0 common.Address
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(common.Address)
	}

	return r0, ret.Error(1)
}

func (_m *ChainClient) SubmitTransfer(ctx context.Context, from custody.Signer, to common.Address, tokenID *big.Int) (*custody.PendingTx, error) {
	ret := _m.Called(ctx, from, to, tokenID)

	if rf, ok := ret.Get(0).(func(context.Context, custody.Signer, common.Address, *big.Int) (*custody.PendingTx, error)); ok {
		return rf(ctx, from, to, tokenID)
	}

	var r0 *custody.PendingTx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*custody.PendingTx)
	}

	return r0, ret.Error(1)
}

func (_m *ChainClient) AwaitConfirmation(ctx context.Context, tx *custody.PendingTx) (*custody.Confirmation, error) {
	ret := _m.Called(ctx, tx)

	if rf, ok := ret.Get(0).(func(context.Context, *custody.PendingTx) (*custody.Confirmation, error)); ok {
		return rf(ctx, tx)
	}

	var r0 *custody.Confirmation
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*custody.Confirmation)
	}

	return r0, ret.Error(1)
}
