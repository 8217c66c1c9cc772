package sqlutil

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNullInt(t *testing.T) {
	v := 4200
	assert.Equal(t, sql.NullInt32{Int32: 4200, Valid: true}, NullInt(&v))
	assert.False(t, NullInt(nil).Valid)
	assert.Equal(t, &v, IntOrNil(NullInt(&v)))
	assert.Nil(t, IntOrNil(sql.NullInt32{}))
}

func TestNullText(t *testing.T) {
	s := "https://img.example/qb.png"
	assert.Equal(t, sql.NullString{String: s, Valid: true}, NullText(&s))
	assert.False(t, NullText(nil).Valid)
	assert.Nil(t, TextOrNil(sql.NullString{}))

	scanned := sql.NullString{String: s, Valid: true}
	got := TextOrNil(scanned)
	scanned.String = "changed"
	assert.Equal(t, s, *got)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert pick: %w", dup)))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
