package common

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error        string `json:"error"`
	Kind         string `json:"kind,omitempty"`
	Hint         string `json:"hint,omitempty"`
	CurrentOwner string `json:"currentOwner,omitempty"`
	AdminWallet  string `json:"adminWallet,omitempty"`
	TxHash       string `json:"transactionHash,omitempty"`
	TokenID      string `json:"tokenId,omitempty"`
	Unconfirmed  bool   `json:"unconfirmed,omitempty"`
}

type ArrayResponse struct {
	Array any `json:"array"`
}

// Body writes body as JSON with the given status.
func Body(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)

	return err
}

// BodyMultiple wraps an array so that the top level is always an object.
func BodyMultiple(w http.ResponseWriter, status int, body any) error {
	return Body(w, status, &ArrayResponse{Array: body})
}

// Error writes a plain error body.
func Error(w http.ResponseWriter, status int, message string) {
	err := Body(w, status, &ErrorResponse{Error: message})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
