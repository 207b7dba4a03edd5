package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decredecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrSelfCheck = errors.New("signer self-check failed")

	selfCheckDigest = crypto.Keccak256([]byte("citizenwallet custody signer self-check"))
)

// Signer is the admin signing authority. It owns the only key allowed to move
// tokens out of custody and never exposes it.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// New parses raw, which must be 0x followed by 64 hex characters. Any other shape is
// reported as a configuration error that describes the value by its length only.
func New(raw string, chainID *big.Int) (*Signer, error) {
	if raw == "" {
		return nil, custody.NewConfigurationError(custody.ErrMissingAdminKey, 0)
	}

	if !com.IsValidKeyFormat(raw) {
		return nil, custody.NewConfigurationError(custody.ErrMalformedAdminKey, len(raw))
	}

	if chainID == nil {
		return nil, errors.New("chain id is required")
	}

	key, err := com.HexToPrivateKey(raw)
	if err != nil {
		// right shape, but not a valid secp256k1 scalar
		return nil, custody.NewConfigurationError(fmt.Errorf("%w: %s", custody.ErrMalformedAdminKey, err.Error()), len(raw))
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).Set(chainID),
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TransactOpts returns fresh options bound to ctx. Nonce and gas are left for the
// chain client to fill.
func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, err
	}

	opts.Context = ctx

	return opts, nil
}

// SelfCheck signs a fixed digest and recovers the signer from the compact signature,
// the recovered address must be the advertised admin address.
func (s *Signer) SelfCheck() error {
	priv := secp256k1.PrivKeyFromBytes(crypto.FromECDSA(s.key))

	sig := decredecdsa.SignCompact(priv, selfCheckDigest, false)

	pubkey, _, err := decredecdsa.RecoverCompact(sig, selfCheckDigest)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSelfCheck, err.Error())
	}

	recovered := crypto.PubkeyToAddress(*pubkey.ToECDSA())
	if recovered != s.address {
		return fmt.Errorf("%w: recovered %s, want %s", ErrSelfCheck, recovered.Hex(), s.address.Hex())
	}

	return nil
}

// String never prints the key.
func (s *Signer) String() string {
	return fmt.Sprintf("signer(%s)", s.address.Hex())
}
