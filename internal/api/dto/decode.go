package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Decode parses a JSON request body into v and rejects unknown fields and
// trailing data.
func Decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required", nil)
		}
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	if dec.More() {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": "trailing data"})
	}
	return nil
}
