package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"email":"a@b.c","password":"x"}`, false},
		{"unknown field", `{"email":"a@b.c","password":"x","role":"SUPER_ADMIN"}`, true},
		{"empty body", ``, true},
		{"malformed", `{"email":`, true},
		{"trailing data", `{"email":"a@b.c"}{"email":"d@e.f"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req LoginRequest
			err := Decode([]byte(tt.body), &req)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "a@b.c", req.Email)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		})
	}
}
