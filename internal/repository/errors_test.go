package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"examplehub_backend/internal/entitlement"
)

func TestTranslateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, entitlement.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, entitlement.ErrConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, entitlement.ErrDuplicate},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, entitlement.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.in), tt.want)
		})
	}

	assert.NoError(t, translateError(nil))

	other := errors.New("connection refused")
	assert.Equal(t, other, translateError(other))

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(translateError(&pgconn.PgError{Code: "40001"}), &pgErr))
}
