package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPartitionName(t *testing.T) {
	got := PartitionName(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
	if got != "checks_2026_03" {
		t.Errorf("expected checks_2026_03, got %q", got)
	}

	got, err := PartitionForDate("2025-12-31")
	if err != nil {
		t.Fatalf("PartitionForDate: %v", err)
	}
	if got != "checks_2025_12" {
		t.Errorf("expected checks_2025_12, got %q", got)
	}

	if _, err := PartitionForDate("2025-13-01"); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := PartitionForDate(""); err == nil {
		t.Error("expected error for empty date")
	}
}

func TestValidatePartition(t *testing.T) {
	valid := []string{"checks_2026_01", "checks_1999_12"}
	for _, name := range valid {
		if err := ValidatePartition(name); err != nil {
			t.Errorf("ValidatePartition(%q): %v", name, err)
		}
	}

	invalid := []string{
		"",
		"checks",
		"checks_2026_13",
		"checks_2026_00",
		"checks_26_01",
		"checks_2026_1",
		"items",
		`checks_2026_01"; DROP TABLE items; --`,
		"checks_2026_01 ",
	}
	for _, name := range invalid {
		err := ValidatePartition(name)
		if !errors.Is(err, ErrInvalidPartition) {
			t.Errorf("ValidatePartition(%q) = %v, want ErrInvalidPartition", name, err)
		}
	}
}

func TestEnsureAndListPartitions(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	parts, err := ListPartitions(ctx, database)
	if err != nil {
		t.Fatalf("ListPartitions: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("expected no partitions, got %v", parts)
	}

	for _, name := range []string{"checks_2026_03", "checks_2025_11", "checks_2026_03"} {
		if err := EnsurePartition(ctx, database, name); err != nil {
			t.Fatalf("EnsurePartition(%s): %v", name, err)
		}
	}

	parts, err = ListPartitions(ctx, database)
	if err != nil {
		t.Fatalf("ListPartitions: %v", err)
	}
	if len(parts) != 2 || parts[0] != "checks_2025_11" || parts[1] != "checks_2026_03" {
		t.Errorf("unexpected partitions: %v", parts)
	}

	ok, err := PartitionExists(ctx, database, "checks_2026_03")
	if err != nil || !ok {
		t.Errorf("PartitionExists(checks_2026_03) = %v, %v", ok, err)
	}
	ok, err = PartitionExists(ctx, database, "checks_2026_04")
	if err != nil || ok {
		t.Errorf("PartitionExists(checks_2026_04) = %v, %v", ok, err)
	}
}

func TestEnsurePartitionRefusesBadName(t *testing.T) {
	database := NewTestDB(t)
	err := EnsurePartition(context.Background(), database, "checks_2026_01; DROP TABLE items")
	if !errors.Is(err, ErrInvalidPartition) {
		t.Fatalf("expected ErrInvalidPartition, got %v", err)
	}
}
