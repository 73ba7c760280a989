package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "itad-system/pkg/errors"
)

type patchTarget struct {
	Name  null.String `json:"name"`
	Notes null.String `json:"notes"`
	Count null.Int    `json:"count"`
}

func TestDecodePatch_TracksSentKeys(t *testing.T) {
	var target patchTarget
	fields, err := DecodePatch([]byte(`{"name":"x","notes":null}`), &target)
	require.NoError(t, err)

	assert.True(t, fields.Has("name"))
	assert.True(t, fields.Has("notes"))
	assert.False(t, fields.Has("count"))
	assert.Equal(t, "x", target.Name.String)
	assert.False(t, target.Notes.Valid)
}

func TestDecodePatch_Rejections(t *testing.T) {
	var target patchTarget
	for _, raw := range []string{`[1,2]`, `{"count":"many"}`, `{`} {
		_, err := DecodePatch([]byte(raw), &target)
		var vErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &vErr, raw)
	}

	fields, err := DecodePatch([]byte("  "), &target)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestParseFilterFromQuery(t *testing.T) {
	values := url.Values{
		"page":         {"3"},
		"limit":        {"10000"},
		"status":       {" RECEIVED "},
		"clientId":     {""},
		"sort[model]":  {"DESC"},
		"sort[bad]":    {"sideways"},
		"filter[type]": {"CUSTOMER"},
		"unrelated":    {"x"},
	}

	f := ParseFilterFromQuery(values, "status", "clientId")

	assert.Equal(t, 3, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 2*MaxLimit, f.Offset)
	assert.True(t, f.WithPagination)
	assert.Equal(t, map[string]interface{}{"status": "RECEIVED", "type": "CUSTOMER"}, f.Filter)
	assert.Equal(t, map[string]string{"model": "desc"}, f.Sort)

	f = ParseFilterFromQuery(url.Values{"withPagination": {"false"}, "page": {"-2"}})
	assert.False(t, f.WithPagination)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
}

func TestDiffPtr(t *testing.T) {
	a, b := "a", "b"
	assert.False(t, DiffPtr[string](nil, nil))
	assert.True(t, DiffPtr(nil, &a))
	assert.True(t, DiffPtr(&a, &b))
	assert.False(t, DiffPtr(&a, ToPtr("a")))
}

func TestErrorResponse_WrappedNotFoundIs404(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPatch, "/api/assets/a1", nil), rec)

	err := fmt.Errorf("failed to record MOVED custody event: %w",
		apperrors.NewNotFoundError("Referenced asset, location or user does not exist"))
	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env HTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Status)
	assert.Contains(t, env.Message, "Referenced asset, location or user does not exist")
}
