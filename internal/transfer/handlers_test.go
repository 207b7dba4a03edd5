package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/citizenwallet/custody/internal/services/inflight"
	"github.com/citizenwallet/custody/internal/signer"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/citizenwallet/custody/pkg/custody/mocks"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memJournal struct {
	entries []*custody.JournalEntry
}

func (j *memJournal) AddReceipt(ctx context.Context, r *custody.Receipt) error {
	return nil
}

func (j *memJournal) GetReceipts(ctx context.Context, tokenID string) ([]*custody.JournalEntry, error) {
	out := []*custody.JournalEntry{}
	for _, e := range j.entries {
		if e.TokenID == tokenID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestRouter(s *Service) http.Handler {
	h := NewHandlers(s)

	r := chi.NewRouter()
	r.Post("/transfer-nft", h.Transfer)
	r.Get("/tokens/{token_id}/custody", h.Custody)
	r.Get("/transfers/{token_id}", h.Receipts)

	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}

	return rr, out
}

func TestTransferHandlerSuccess(t *testing.T) {
	chain := &mocks.ChainClient{}
	sig := newTestSigner(t)
	ptx := expectTransfer(chain, sig.Address(), 77)

	h := newTestRouter(NewService(chain, sig, nil, inflight.NewLocalGuard(0, time.Minute)))

	rr, out := do(t, h, http.MethodPost, "/transfer-nft", `{"tokenId": "42", "companionWallet": "`+testCompanion+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, true, out["success"])
	assert.Equal(t, ptx.Hash().Hex(), out["transactionHash"])
	assert.Equal(t, "42", out["tokenId"], "tokenId is echoed as given")
	assert.Equal(t, sig.Address().Hex(), out["from"])
	assert.Equal(t, testCompanion, out["to"])
	assert.Equal(t, float64(77), out["blockNumber"])
}

func TestTransferHandlerNumericTokenID(t *testing.T) {
	chain := &mocks.ChainClient{}
	sig := newTestSigner(t)
	expectTransfer(chain, sig.Address(), 1)

	h := newTestRouter(NewService(chain, sig, nil, inflight.NewLocalGuard(0, time.Minute)))

	rr, _ := do(t, h, http.MethodPost, "/transfer-nft", `{"tokenId": 42, "companionWallet": "`+testCompanion+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"tokenId":42`)
}

func TestTransferHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `tokenId=42`},
		{"missing token", `{"companionWallet": "` + testCompanion + `"}`},
		{"negative token", `{"tokenId": -1, "companionWallet": "` + testCompanion + `"}`},
		{"fraction token", `{"tokenId": 1.5, "companionWallet": "` + testCompanion + `"}`},
		{"bad token string", `{"tokenId": "abc", "companionWallet": "` + testCompanion + `"}`},
		{"missing wallet", `{"tokenId": 42}`},
		{"short wallet", `{"tokenId": 42, "companionWallet": "0x1234"}`},
		{"numeric wallet", `{"tokenId": 42, "companionWallet": 1234}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &mocks.ChainClient{}
			h := newTestRouter(NewService(chain, newTestSigner(t), nil, inflight.NewLocalGuard(0, time.Minute)))

			rr, out := do(t, h, http.MethodPost, "/transfer-nft", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, string(custody.KindValidation), out["kind"])
			assert.NotEmpty(t, out["error"])
			assertNoChainCalls(t, chain)
		})
	}
}

func TestTransferHandlerCustodyError(t *testing.T) {
	chain := &mocks.ChainClient{}
	sig := newTestSigner(t)
	chain.On("OwnerOf", mock.Anything, mock.Anything).Return(common.HexToAddress(testCompanion), nil)

	h := newTestRouter(NewService(chain, sig, nil, inflight.NewLocalGuard(0, time.Minute)))

	rr, out := do(t, h, http.MethodPost, "/transfer-nft", `{"tokenId": 42, "companionWallet": "`+testCompanion+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, string(custody.KindCustody), out["kind"])
	assert.True(t, strings.EqualFold(testCompanion, out["currentOwner"].(string)))
	assert.Equal(t, sig.Address().Hex(), out["adminWallet"])
}

func TestTransferHandlerConfigurationError(t *testing.T) {
	key := "0x" + strings.Repeat("ab", 31)

	_, sigErr := signer.New(key, testChainID)
	require.Error(t, sigErr)

	chain := &mocks.ChainClient{}
	h := newTestRouter(NewService(chain, nil, sigErr, inflight.NewLocalGuard(0, time.Minute)))

	rr, out := do(t, h, http.MethodPost, "/transfer-nft", `{"tokenId": 42, "companionWallet": "`+testCompanion+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, string(custody.KindConfiguration), out["kind"])
	assert.Contains(t, out["hint"], "0x followed by 64 hex characters")
	assert.Contains(t, out["hint"], "length 64")
	assert.NotContains(t, rr.Body.String(), key[2:])
	assertNoChainCalls(t, chain)
}

func TestTransferHandlerInFlight(t *testing.T) {
	chain := &mocks.ChainClient{}
	guard := inflight.NewLocalGuard(0, time.Minute)

	ok, err := guard.Acquire(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, ok)

	h := newTestRouter(NewService(chain, newTestSigner(t), nil, guard))

	rr, out := do(t, h, http.MethodPost, "/transfer-nft", `{"tokenId": 42, "companionWallet": "`+testCompanion+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, string(custody.KindInFlight), out["kind"])
	assert.Equal(t, "42", out["tokenId"])
	assertNoChainCalls(t, chain)
}

func TestTransferHandlerUnconfirmed(t *testing.T) {
	chain := &mocks.ChainClient{}
	sig := newTestSigner(t)
	ptx := pendingTx(0, common.HexToAddress(testCompanion))

	chain.On("OwnerOf", mock.Anything, mock.Anything).Return(sig.Address(), nil)
	chain.On("SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(ptx, nil)
	chain.On("AwaitConfirmation", mock.Anything, mock.Anything).Return(nil, custody.ErrUnconfirmed)

	h := newTestRouter(NewService(chain, sig, nil, inflight.NewLocalGuard(0, time.Minute)))

	rr, out := do(t, h, http.MethodPost, "/transfer-nft", `{"tokenId": 42, "companionWallet": "`+testCompanion+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, string(custody.KindUnconfirmed), out["kind"])
	assert.Equal(t, true, out["unconfirmed"])
	assert.Equal(t, ptx.Hash().Hex(), out["transactionHash"])
}

func TestTransferHandlerIdempotencyHeader(t *testing.T) {
	chain := &mocks.ChainClient{}
	sig := newTestSigner(t)
	expectTransfer(chain, sig.Address(), 3)

	s := NewService(chain, sig, nil, inflight.NewLocalGuard(0, time.Minute), WithReplayStore(inflight.NewReplayStore(0), time.Hour))
	h := newTestRouter(s)

	body := `{"tokenId": 42, "companionWallet": "` + testCompanion + `"}`

	rr, first := do(t, h, http.MethodPost, "/transfer-nft", body, custody.IdempotencyKeyHeader, "abc")
	require.Equal(t, http.StatusOK, rr.Code)

	rr, second := do(t, h, http.MethodPost, "/transfer-nft", body, custody.IdempotencyKeyHeader, "abc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first["transactionHash"], second["transactionHash"])

	chain.AssertNumberOfCalls(t, "SubmitTransfer", 1)
}

func TestTransferHandlerInternalError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, errors.New("redis: connection refused"))

	var out com.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal error", out.Error)
	assert.Equal(t, kindInternal, out.Kind)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(custody.KindValidation))
	assert.Equal(t, http.StatusConflict, StatusOf(custody.KindInFlight))
	for _, k := range []custody.Kind{custody.KindConfiguration, custody.KindCustody, custody.KindChain, custody.KindSubmission, custody.KindUnconfirmed, custody.KindUnknown} {
		assert.Equal(t, http.StatusInternalServerError, StatusOf(k), k)
	}
}

func TestCustodyHandler(t *testing.T) {
	chain := &mocks.ChainClient{}
	sig := newTestSigner(t)
	chain.On("OwnerOf", mock.Anything, big.NewInt(42)).Return(sig.Address(), nil)
	chain.On("OwnerOf", mock.Anything, big.NewInt(404)).Return(nil, custody.ErrTokenNotFound)

	h := newTestRouter(NewService(chain, sig, nil, inflight.NewLocalGuard(0, time.Minute)))

	rr, out := do(t, h, http.MethodGet, "/tokens/42/custody", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["inCustody"])
	assert.Equal(t, sig.Address().Hex(), out["owner"])

	rr, out = do(t, h, http.MethodGet, "/tokens/404/custody", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, string(custody.KindChain), out["kind"])

	rr, out = do(t, h, http.MethodGet, "/tokens/abc/custody", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(custody.KindValidation), out["kind"])
}

func TestReceiptsHandler(t *testing.T) {
	j := &memJournal{entries: []*custody.JournalEntry{
		{ID: "1", TransactionHash: "0xabc", TokenID: "42", To: testCompanion, BlockNumber: 9},
	}}

	h := newTestRouter(NewService(&mocks.ChainClient{}, newTestSigner(t), nil, inflight.NewLocalGuard(0, time.Minute), WithJournal(j)))

	rr, out := do(t, h, http.MethodGet, "/transfers/0x2a", "")
	require.Equal(t, http.StatusOK, rr.Code)
	arr, ok := out["array"].([]any)
	require.True(t, ok)
	assert.Len(t, arr, 1)

	rr, _ = do(t, h, http.MethodGet, "/transfers/43", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReceiptsHandlerJournalDisabled(t *testing.T) {
	h := newTestRouter(NewService(&mocks.ChainClient{}, newTestSigner(t), nil, inflight.NewLocalGuard(0, time.Minute)))

	rr, _ := do(t, h, http.MethodGet, "/transfers/42", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
