// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/dberr"
)

/*
TestWrap_Classification maps driver errors onto API errors.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no_rows", pgx.ErrNoRows, http.StatusNotFound},
		{"unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "Account"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.status, ae.HTTPStatus)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Account"))
}

/*
TestIsForeignKeyViolation checks the SQLSTATE helper.
*/
func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, dberr.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, dberr.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dberr.IsForeignKeyViolation(errors.New("x")))
}
