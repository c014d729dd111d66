package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "uc_stocks_nomor_seri_barang",
	}
	wrapped := fmt.Errorf("insert stock: %w", pgErr)

	if !IsUniqueViolation(wrapped, "uc_stocks_nomor_seri_barang") {
		t.Fatal("expected pg unique violation to match")
	}
	if IsUniqueViolation(wrapped, "uc_users_username") {
		t.Fatal("expected mismatched constraint to be rejected")
	}
	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected empty constraint to match any violation")
	}
}

func TestIsUniqueViolationPostgresOtherCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "fk_created_by"}
	if IsUniqueViolation(pgErr, "") {
		t.Fatal("foreign key violation must not count as unique violation")
	}
}

func TestIsUniqueViolationSQLiteText(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: stocks.nomor_seri_barang")
	if !IsUniqueViolation(err, "nomor_seri_barang") {
		t.Fatal("expected sqlite text error to match")
	}
	// the postgres index name embeds the column sqlite reports
	if !IsUniqueViolation(err, "uc_stocks_nomor_seri_barang") {
		t.Fatal("expected index name to match sqlite column error")
	}
	if IsUniqueViolation(err, "uc_users_username") {
		t.Fatal("expected different column to be rejected")
	}
}

func TestIsUniqueViolationUnrelated(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
}
