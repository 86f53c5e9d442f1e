package serverutil_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/newsstand/api"
	nserrs "github.com/jdholdren/newsstand/internal/errors"
	"github.com/jdholdren/newsstand/internal/serverutil"
)

type named struct {
	Name string `json:"name"`
}

func (n named) Validate() error {
	if n.Name == "" {
		return api.Invalid([]api.ErrorDetail{{Field: "name", Error: "name is required"}})
	}
	return nil
}

func TestDecodeValid(t *testing.T) {
	got, err := serverutil.DecodeValid[named](strings.NewReader(`{"name":"news"}`))
	require.NoError(t, err)
	assert.Equal(t, named{Name: "news"}, got)

	_, err = serverutil.DecodeValid[named](strings.NewReader(`{}`))
	sErr := &nserrs.Error{}
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusBadRequest, sErr.Status)
	assert.Equal(t, []nserrs.Detail{{Field: "name", Error: "name is required"}}, sErr.Details)

	_, err = serverutil.DecodeValid[named](strings.NewReader(`not json`))
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusBadRequest, sErr.Status)
}

func TestHandlerFuncE(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "structured",
			err:        nserrs.E(http.StatusNotFound, "feed not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"feed not found","status":404}`,
		},
		{
			name:       "plain errors are hidden",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"internal server error","status":500}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := serverutil.HandlerFuncE(func(w http.ResponseWriter, r *http.Request) error {
				return test.err
			})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, test.wantStatus, rec.Code)
			assert.JSONEq(t, test.wantBody, rec.Body.String())
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	h := serverutil.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(serverutil.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(serverutil.RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(serverutil.RequestIDHeader))
}
