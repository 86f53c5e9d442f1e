package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nserrs "github.com/jdholdren/newsstand/internal/errors"
)

func TestEConstructor(t *testing.T) {
	got := nserrs.E(
		"something went wrong",
		nserrs.Detail{Field: "name", Error: "was bad"},
		http.StatusBadRequest,
	)
	want := &nserrs.Error{
		Err: errors.New("something went wrong"),
		Details: []nserrs.Detail{
			{Field: "name", Error: "was bad"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

func TestEUnwraps(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := nserrs.E(http.StatusNotFound, sentinel)

	assert.ErrorIs(t, err, sentinel)
}

func TestJSONRoundTrip(t *testing.T) {
	byts, err := json.Marshal(nserrs.E(http.StatusConflict, "feed exists"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"feed exists","status":409}`, string(byts))

	var got nserrs.Error
	require.NoError(t, json.Unmarshal(byts, &got))
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.EqualError(t, got.Err, "feed exists")
}
