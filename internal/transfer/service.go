package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/citizenwallet/custody/internal/logging"
	"github.com/citizenwallet/custody/internal/metrics"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/ethereum/go-ethereum/common"
	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfirmationTimeout = 90 * time.Second
	DefaultReplayTTL           = 24 * time.Hour
)

var ErrJournalDisabled = errors.New("transfer journal is not enabled")

type Enqueuer interface {
	Enqueue(custody.Message) error
}

// Service moves tokens out of admin custody, one confirmed transfer at a time per token.
type Service struct {
	chain    custody.ChainClient
	admin    custody.Signer
	adminErr error

	guard   custody.Guard
	replay  custody.ReplayStore
	journal custody.Journal
	queue   Enqueuer

	confirmationTimeout time.Duration
	replayTTL           time.Duration

	validate *validator.Validate
	metrics  metrics.Service
	log      logging.Logger
}

type Option func(*Service)

func WithReplayStore(r custody.ReplayStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.replay = r
		if ttl > 0 {
			s.replayTTL = ttl
		}
	}
}

func WithJournal(j custody.Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithQueue hands confirmed receipts to the post-confirmation jobs.
func WithQueue(q Enqueuer) Option {
	return func(s *Service) {
		s.queue = q
	}
}

func WithConfirmationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.confirmationTimeout = d
		}
	}
}

func WithMetrics(m metrics.Service) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService builds the transfer service. admin may be nil, in which case adminErr
// is returned from every transfer; the process keeps serving so the problem shows up
// per request instead of as a crash loop.
func NewService(chain custody.ChainClient, admin custody.Signer, adminErr error, guard custody.Guard, opts ...Option) *Service {
	if admin == nil && adminErr == nil {
		adminErr = custody.NewConfigurationError(custody.ErrMissingAdminKey, 0)
	}

	s := &Service{
		chain:               chain,
		admin:               admin,
		adminErr:            adminErr,
		guard:               guard,
		confirmationTimeout: DefaultConfirmationTimeout,
		replayTTL:           DefaultReplayTTL,
		validate:            validator.New(),
		metrics:             metrics.Nop{},
		log:                 logging.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TransferToken checks the request, confirms the admin still holds the token and
// moves it to the companion wallet. It returns once the transfer has one confirmation
// or the confirmation timeout has passed.
func (s *Service) TransferToken(ctx context.Context, req custody.TransferRequest) (receipt *custody.Receipt, err error) {
	defer s.metrics.BumpTime("transfer.time").End()
	defer func() {
		s.record(req, err)
	}()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	admin, err := s.signer()
	if err != nil {
		return nil, err
	}

	// transferFrom(admin, admin) would succeed and leave the token in custody
	if com.IsSameHexAddress(req.CompanionWallet, admin.Address().Hex()) {
		return nil, custody.NewValidationError(custody.ErrCompanionIsAdmin)
	}

	if req.IdempotencyKey != "" && s.replay != nil {
		r, ok, err := s.replay.Get(ctx, req.IdempotencyKey)
		if err != nil {
			s.log.WithField("err", err).Warn("idempotency lookup failed")
		} else if ok {
			if !r.TokenID.Equal(req.TokenID) || !strings.EqualFold(r.To, req.CompanionWallet) {
				return nil, custody.NewValidationError(custody.ErrIdempotencyKeyMismatch)
			}

			s.metrics.BumpSum("transfer.replay", 1)
			return r, nil
		}
	}

	tokenID := req.TokenID.String()

	held, err := s.guard.Acquire(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("in-flight guard: %w", err)
	}
	if !held {
		return nil, custody.NewInFlightError(tokenID)
	}

	keepGuard := false
	defer func() {
		if keepGuard {
			return
		}
		if err := s.guard.Release(context.Background(), tokenID); err != nil {
			s.log.WithFields(logging.Fields{"token_id": tokenID, "err": err}).Warn("failed to release in-flight guard")
		}
	}()

	id := req.TokenID.Big()

	owner, err := s.chain.OwnerOf(ctx, id)
	if err != nil {
		return nil, custody.NewChainError(err)
	}

	if owner != admin.Address() {
		return nil, custody.NewCustodyError(owner.Hex(), admin.Address().Hex())
	}

	to := common.HexToAddress(req.CompanionWallet)

	pending, err := s.chain.SubmitTransfer(ctx, admin, to, id)
	if err != nil {
		return nil, custody.NewSubmissionError(err, "")
	}

	log := s.log.WithFields(logging.Fields{"token_id": tokenID, "to": to.Hex(), "tx_hash": pending.Hash().Hex(), "nonce": pending.Nonce})
	log.Info("transfer submitted")

	waitCtx, cancel := context.WithTimeout(ctx, s.confirmationTimeout)
	defer cancel()

	conf, err := s.chain.AwaitConfirmation(waitCtx, pending)
	if err != nil {
		if errors.Is(err, custody.ErrReverted) {
			return nil, custody.NewSubmissionError(err, pending.Hash().Hex())
		}

		// the transfer may still land, keep the token marked until the guard expires
		keepGuard = true
		return nil, custody.NewUnconfirmedError(err, pending.Hash().Hex())
	}

	receipt = &custody.Receipt{
		Success:         true,
		TransactionHash: conf.TxHash.Hex(),
		TokenID:         req.TokenID,
		From:            admin.Address().Hex(),
		To:              req.CompanionWallet,
		BlockNumber:     conf.BlockNumber,
	}

	s.metrics.BumpHistogram("transfer.gas_used", float64(conf.GasUsed))
	if !pending.SubmittedAt.IsZero() {
		s.metrics.BumpHistogram("transfer.confirmation_ms", float64(time.Since(pending.SubmittedAt).Milliseconds()))
	}

	log.WithFields(logging.Fields{"block": conf.BlockNumber, "gas_used": conf.GasUsed}).Info("transfer confirmed")

	if req.IdempotencyKey != "" && s.replay != nil {
		if err := s.replay.Put(ctx, req.IdempotencyKey, receipt, s.replayTTL); err != nil {
			log.WithField("err", err).Warn("failed to store receipt for replay")
		}
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(*custody.NewReceiptMessage(*receipt)); err != nil {
			log.WithField("err", err).Warn("failed to enqueue receipt")
		}
	}

	return receipt, nil
}

// Custody reads the current owner of a token without changing anything.
func (s *Service) Custody(ctx context.Context, tokenID custody.TokenID) (*custody.CustodyStatus, error) {
	if tokenID.IsZero() {
		return nil, custody.NewValidationError(custody.ErrMissingTokenID)
	}

	admin, err := s.signer()
	if err != nil {
		return nil, err
	}

	owner, err := s.chain.OwnerOf(ctx, tokenID.Big())
	if err != nil {
		return nil, custody.NewChainError(err)
	}

	return &custody.CustodyStatus{
		TokenID:     tokenID,
		Owner:       owner.Hex(),
		AdminWallet: admin.Address().Hex(),
		InCustody:   owner == admin.Address(),
	}, nil
}

// Receipts returns the journaled transfers of a token.
func (s *Service) Receipts(ctx context.Context, tokenID custody.TokenID) ([]*custody.JournalEntry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}

	return s.journal.GetReceipts(ctx, tokenID.String())
}

func (s *Service) signer() (custody.Signer, error) {
	if s.adminErr != nil {
		return nil, s.adminErr
	}

	return s.admin, nil
}

func (s *Service) validateRequest(req custody.TransferRequest) error {
	if req.TokenID.IsZero() {
		return custody.NewValidationError(custody.ErrMissingTokenID)
	}

	if req.TokenID.Big().Cmp(big.NewInt(0)) < 0 {
		return custody.NewValidationError(custody.ErrInvalidTokenID)
	}

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "CompanionWallet" && fe.Tag() == "required" {
				return custody.NewValidationError(custody.ErrMissingWallet)
			}
		}
	}

	return custody.NewValidationError(custody.ErrInvalidAddress)
}

func (s *Service) record(req custody.TransferRequest, err error) {
	if err == nil {
		s.metrics.BumpSum("transfer.ok", 1)
		return
	}

	kind := custody.KindOf(err)
	s.metrics.BumpSum("transfer.err", 1, "kind", string(kind))

	log := s.log.WithFields(logging.Fields{"token_id": req.TokenID.String(), "kind": string(kind), "err": err})

	switch kind {
	case custody.KindValidation, custody.KindCustody, custody.KindInFlight:
		log.Info("transfer rejected")
	case custody.KindConfiguration, custody.KindSubmission, custody.KindUnconfirmed, custody.KindUnknown:
		log.Error("transfer failed")
		sentry.CaptureException(err)
	default:
		log.Warn("transfer failed")
	}
}
