package version

import (
	"net/http"

	"github.com/citizenwallet/custody/internal/common"
	"github.com/citizenwallet/custody/pkg/custody"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

type response struct {
	Version string `json:"version"`
}

// Current returns the current version of the API
func (s *Service) Current(w http.ResponseWriter, r *http.Request) {
	err := common.Body(w, http.StatusOK, &response{Version: custody.Version})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
