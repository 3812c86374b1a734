package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "devquest/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	ID   string `json:"external_id" validate:"required,max=8"`
	Kind string `json:"kind"        validate:"required,ident"`
	Page int    `json:"page,omitempty" validate:"omitempty,min=1"`
}

func req(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecode_OK(t *testing.T) {
	got, err := Decode[event](req(`{"external_id":"ev-1","kind":"PullRequestEvent"}`))
	require.NoError(t, err)
	assert.Equal(t, event{ID: "ev-1", Kind: "PullRequestEvent"}, got)
}

func TestDecode_JSONErrors(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    ``,
		"broken":   `{"external_id":`,
		"unknown":  `{"external_id":"a","kind":"push","extra":1}`,
		"trailing": `{"external_id":"a","kind":"push"} {}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode[event](req(body))
			assert.Equal(t, perr.ErrorCodeJSON, perr.CodeOf(err), "%v", err)
		})
	}
}

func TestDecode_ValidationNamesJSONField(t *testing.T) {
	cases := []struct {
		body, field, msg string
	}{
		{`{"kind":"push"}`, "external_id", "external_id is a required field"},
		{`{"external_id":"123456789","kind":"push"}`, "external_id", "external_id must be at most 8"},
		{`{"external_id":"a","kind":"push event"}`, "kind", "kind must be a bare identifier"},
		{`{"external_id":"a","kind":"push","page":-1}`, "page", "page must be at least 1"},
	}
	for _, c := range cases {
		_, err := Decode[event](req(c.body))
		require.Error(t, err, c.body)
		w := perr.WireFrom(err)
		assert.Equal(t, perr.ErrorCodeValidation, w.Code)
		assert.Equal(t, c.field, w.Field)
		assert.Equal(t, c.msg, w.Message)
	}
}

func TestDecode_BodyCap(t *testing.T) {
	big := `{"external_id":"a","kind":"` + strings.Repeat("x", int(MaxBody)) + `"}`
	_, err := Decode[event](req(big))
	assert.Equal(t, perr.ErrorCodeJSON, perr.CodeOf(err))
}
