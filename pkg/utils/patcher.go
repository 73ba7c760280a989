package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	apperrors "itad-system/pkg/errors"
)

// PatchFields records which JSON keys were present in a PATCH body.
// null.* types alone cannot tell an omitted field from an explicit null.
type PatchFields map[string]struct{}

func (p PatchFields) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// BindPatch decodes the raw request body into dto and returns the set of keys the client sent.
func BindPatch(c echo.Context, dto interface{}) (PatchFields, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(raw))
	return DecodePatch(raw, dto)
}

func DecodePatch(raw []byte, dto interface{}) (PatchFields, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return PatchFields{}, nil
	}

	var sentFields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sentFields); err != nil {
		return nil, apperrors.NewValidationError("Request body must be a JSON object")
	}
	if err := json.Unmarshal(raw, dto); err != nil {
		return nil, apperrors.NewValidationError("Invalid request body: " + err.Error())
	}

	fields := make(PatchFields, len(sentFields))
	for k := range sentFields {
		fields[k] = struct{}{}
	}
	return fields, nil
}
