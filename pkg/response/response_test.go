package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/riskdash-backend/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/x", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestSuccess_WritesBarePayload(t *testing.T) {
	w := serve(func(c *gin.Context) { Success(c, []int{1, 2}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[1,2]`, w.Body.String())
}

func TestFromError_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.New(apperr.InvalidInput, "bad mes"), http.StatusBadRequest, "INVALID_INPUT"},
		{apperr.New(apperr.NotFound, "no rows"), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("load: %w", apperr.New(apperr.DataUnavailable, "no snapshot")), http.StatusServiceUnavailable, "DATA_UNAVAILABLE"},
		{apperr.New(apperr.UpstreamFailure, "llm down"), http.StatusServiceUnavailable, "UPSTREAM_FAILURE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		w := serve(func(c *gin.Context) { FromError(c, tc.err) })
		assert.Equal(t, tc.status, w.Code)

		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code)
	}
}

func TestFromError_HidesInternalMessage(t *testing.T) {
	w := serve(func(c *gin.Context) { FromError(c, errors.New("secret dsn")) })
	assert.NotContains(t, w.Body.String(), "secret")
}
