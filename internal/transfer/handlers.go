package transfer

import (
	"encoding/json"
	"errors"
	"net/http"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/go-chi/chi/v5"
)

// kindInternal labels failures that are not part of the transfer error taxonomy
const kindInternal = "internal"

var errInvalidBody = errors.New("request body must be a JSON object with tokenId and companionWallet")

type Handlers struct {
	s *Service
}

func NewHandlers(s *Service) *Handlers {
	return &Handlers{s: s}
}

type transferRequest struct {
	TokenID         json.RawMessage `json:"tokenId"`
	CompanionWallet string          `json:"companionWallet"`
}

// Transfer handler for moving a token from the admin wallet to a companion wallet
func (h *Handlers) Transfer(w http.ResponseWriter, r *http.Request) {
	var body transferRequest

	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeError(w, custody.NewValidationError(errInvalidBody))
		return
	}
	defer r.Body.Close()

	tokenID, err := custody.ParseTokenIDJSON(body.TokenID)
	if err != nil {
		writeError(w, custody.NewValidationError(err))
		return
	}

	receipt, err := h.s.TransferToken(r.Context(), custody.TransferRequest{
		TokenID:         tokenID,
		CompanionWallet: body.CompanionWallet,
		IdempotencyKey:  r.Header.Get(custody.IdempotencyKeyHeader),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	com.Body(w, http.StatusOK, receipt)
}

// Custody handler for reading who holds a token
func (h *Handlers) Custody(w http.ResponseWriter, r *http.Request) {
	tokenID, err := custody.ParseTokenID(chi.URLParam(r, "token_id"))
	if err != nil {
		writeError(w, custody.NewValidationError(err))
		return
	}

	status, err := h.s.Custody(r.Context(), tokenID)
	if err != nil {
		writeError(w, err)
		return
	}

	com.Body(w, http.StatusOK, status)
}

// Receipts handler for listing the journaled transfers of a token
func (h *Handlers) Receipts(w http.ResponseWriter, r *http.Request) {
	tokenID, err := custody.ParseTokenID(chi.URLParam(r, "token_id"))
	if err != nil {
		writeError(w, custody.NewValidationError(err))
		return
	}

	entries, err := h.s.Receipts(r.Context(), tokenID)
	if errors.Is(err, ErrJournalDisabled) {
		com.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		com.Error(w, http.StatusInternalServerError, "failed to read transfer journal")
		return
	}

	if len(entries) == 0 {
		com.Error(w, http.StatusNotFound, "no transfers found for token")
		return
	}

	com.BodyMultiple(w, http.StatusOK, entries)
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind custody.Kind) int {
	switch kind {
	case custody.KindValidation:
		return http.StatusBadRequest
	case custody.KindInFlight:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var cerr *custody.Error
	if !errors.As(err, &cerr) {
		com.Body(w, http.StatusInternalServerError, &com.ErrorResponse{Error: "internal error", Kind: kindInternal})
		return
	}

	com.Body(w, StatusOf(cerr.Kind), &com.ErrorResponse{
		Error:        cerr.Message,
		Kind:         string(cerr.Kind),
		Hint:         cerr.Hint,
		CurrentOwner: cerr.CurrentOwner,
		AdminWallet:  cerr.AdminWallet,
		TxHash:       cerr.TxHash,
		TokenID:      cerr.TokenID,
		Unconfirmed:  cerr.Kind == custody.KindUnconfirmed,
	})
}
