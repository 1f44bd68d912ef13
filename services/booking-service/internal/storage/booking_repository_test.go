package storage

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsSlotTaken(t *testing.T) {
	taken := fmt.Errorf("insert booking: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_bookings_active_slot"})
	if !IsSlotTaken(taken) {
		t.Fatal("unique violation should map to slot taken")
	}
	other := fmt.Errorf("insert booking: %w", &pgconn.PgError{Code: "23503"})
	if IsSlotTaken(other) {
		t.Fatal("foreign key violation should not map to slot taken")
	}
	if IsSlotTaken(fmt.Errorf("connection refused")) {
		t.Fatal("plain error should not map to slot taken")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("load booking: %w", pgx.ErrNoRows)) {
		t.Fatal("wrapped ErrNoRows should map to not found")
	}
	if IsNotFound(fmt.Errorf("load booking: boom")) {
		t.Fatal("plain error should not map to not found")
	}
}
