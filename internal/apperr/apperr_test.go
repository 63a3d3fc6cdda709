package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"no rows", pgx.ErrNoRows, NotFound},
		{"wrapped no rows", fmt.Errorf("get exam: %w", pgx.ErrNoRows), NotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, Constraint},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, Constraint},
		{"check violation", &pgconn.PgError{Code: "23514"}, Unexpected},
		{"plain error", errors.New("boom"), Unexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err).Kind)
		})
	}
}

func TestClassifyPassesThroughClassifiedErrors(t *testing.T) {
	orig := New(Constraint, "nama sudah digunakan")
	got := Classify(fmt.Errorf("create exam: %w", orig))
	assert.Equal(t, Constraint, got.Kind)
	assert.Equal(t, "nama sudah digunakan", got.Message)
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Validation, KindOf(WithFields(map[string]string{"name": "required"})))
	assert.Equal(t, Unexpected, KindOf(errors.New("boom")))
}

func TestSafeMessage(t *testing.T) {
	t.Run("explicit message is safe", func(t *testing.T) {
		msg, ok := SafeMessage(New(Constraint, "nama ujian sudah digunakan"))
		require.True(t, ok)
		assert.Equal(t, "nama ujian sudah digunakan", msg)
	})

	t.Run("allow-listed phrase is safe", func(t *testing.T) {
		msg, ok := SafeMessage(errors.New("siswa tidak ditemukan"))
		require.True(t, ok)
		assert.Equal(t, "siswa tidak ditemukan", msg)
	})

	t.Run("arbitrary error text is not safe", func(t *testing.T) {
		_, ok := SafeMessage(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
		assert.False(t, ok)
	})
}

func TestIsResourceExhausted(t *testing.T) {
	assert.True(t, IsResourceExhausted(&pgconn.PgError{Code: "53300"}))
	assert.False(t, IsResourceExhausted(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsResourceExhausted(errors.New("boom")))
}
