package database

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRunMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for _, m := range Migrations {
		mock.ExpectExec(regexp.QuoteMeta(m)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(Migrations[0])).WillReturnError(errors.New("permission denied"))

	err = RunMigrations(db)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "CREATE TABLE IF NOT EXISTS users") {
		t.Errorf("error should include the failing SQL: %v", err)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	for _, m := range Migrations {
		if !strings.Contains(m, "IF NOT EXISTS") {
			t.Errorf("migration is not idempotent: %s", m)
		}
	}
}
