package version

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	rr := httptest.NewRecorder()
	NewService().Current(rr, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"`+custody.Version+`"}`, rr.Body.String())
}
