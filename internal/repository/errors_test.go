package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_comments_movie"}
	err := translateError(fmt.Errorf("insert: %w", fk))
	assert.ErrorIs(t, err, ErrReferenceViolation)
	assert.Contains(t, err.Error(), "fk_comments_movie")

	other := errors.New("connection reset by peer")
	assert.Equal(t, other, translateError(other))
	assert.NoError(t, translateError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
