package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRequest struct {
	Name string `json:"name"`
}

func (c createRequest) Validate() []string {
	if c.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantSubstr string
	}{
		{name: "valid", body: `{"name":"x"}`, wantOK: true},
		{name: "unknown field", body: `{"name":"x","extra":1}`, wantSubstr: "unknown field"},
		{name: "validation error", body: `{}`, wantSubstr: "name is required"},
		{name: "malformed", body: `{`, wantSubstr: "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest createRequest
			ok := DecodeAndValidate(rec, req, &dest)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.wantSubstr)
			}
		})
	}
}

func TestWriteJSONErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONErrorDetails(rec, http.StatusUnprocessableEntity, "INFEASIBLE_CONSTRAINTS", "no draw", "2 of 3")

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INFEASIBLE_CONSTRAINTS", resp.Error.Code)
	assert.Equal(t, "2 of 3", resp.Error.Details)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", DefaultPage, DefaultPageSize},
		{"page=3&page_size=10", 3, 10},
		{"page=0&page_size=-1", DefaultPage, DefaultPageSize},
		{"page_size=1000", DefaultPage, MaxPageSize},
		{"page=abc", DefaultPage, DefaultPageSize},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		p := ParsePagination(req)
		assert.Equal(t, tt.wantPage, p.Page, tt.query)
		assert.Equal(t, tt.wantPageSize, p.PageSize, tt.query)
	}
	assert.Equal(t, 3, NewPaginationMeta(1, 2, 5).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(1, 0, 5).TotalPages)
}
