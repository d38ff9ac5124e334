package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// sqlmockDB wraps the mock handle so repository structs can share it.
type sqlmockDB struct {
	*sql.DB
}

func newMockDB(t *testing.T) (*sqlmockDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	return &sqlmockDB{db}, mock
}
