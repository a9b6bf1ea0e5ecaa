package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatal("sql.ErrNoRows must be treated as not found")
	}
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatal("wrapped sql.ErrNoRows must be treated as not found")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatal("unrelated errors must not be treated as not found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("23505 must be treated as a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("other pq codes must not be treated as unique violations")
	}
	if isUniqueViolation(fmt.Errorf("boom")) {
		t.Fatal("unrelated errors must not be treated as unique violations")
	}
}
