package service

import (
	"context"
	"errors"
	"testing"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
)

func dailyTestLot(t *testing.T) (*testEnv, *entity.ProductionLot) {
	t.Helper()
	env := newTestEnv(t)
	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-DAILY", 100, "2026-03-01", "2026-03-15")
	return env, lot
}

func TestCreateDailyEntryDerivesEfficiency(t *testing.T) {
	env, lot := dailyTestLot(t)

	e, err := env.daily.Create(context.Background(), lot.ID, &CreateDailyEntryRequest{
		EntryDate:       "2026-03-02",
		PlannedQuantity: 100,
		ActualQuantity:  95,
	}, testUserID)
	if err != nil {
		t.Fatalf("Create daily entry failed: %v", err)
	}
	if e.EfficiencyPercentage != 95 {
		t.Errorf("Efficiency = %v, want 95", e.EfficiencyPercentage)
	}
	if e.CreatedBy != testUserID {
		t.Errorf("CreatedBy = %s, want %s", e.CreatedBy, testUserID)
	}
}

func TestCreateDailyEntryValidation(t *testing.T) {
	env, lot := dailyTestLot(t)
	ctx := context.Background()

	_, err := env.daily.Create(ctx, lot.ID, &CreateDailyEntryRequest{
		EntryDate:       "02-03-2026",
		PlannedQuantity: 10,
	}, testUserID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Bad date format should fail validation, got %v", err)
	}

	_, err = env.daily.Create(ctx, lot.ID, &CreateDailyEntryRequest{
		EntryDate:       "2026-03-02",
		PlannedQuantity: -5,
	}, testUserID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Negative planned quantity should fail validation, got %v", err)
	}
}

func TestUpdateDailyEntryRecomputesEfficiency(t *testing.T) {
	env, lot := dailyTestLot(t)
	ctx := context.Background()

	e, err := env.daily.Create(ctx, lot.ID, &CreateDailyEntryRequest{
		EntryDate:       "2026-03-02",
		PlannedQuantity: 100,
		ActualQuantity:  50,
	}, testUserID)
	if err != nil {
		t.Fatalf("Create daily entry failed: %v", err)
	}

	actual := 80.0
	updated, err := env.daily.Update(ctx, e.ID, &UpdateDailyEntryRequest{ActualQuantity: &actual}, testUserID)
	if err != nil {
		t.Fatalf("Update daily entry failed: %v", err)
	}
	if updated.EfficiencyPercentage != 80 {
		t.Errorf("Efficiency after update = %v, want 80", updated.EfficiencyPercentage)
	}

	bad := -1.0
	if _, err := env.daily.Update(ctx, e.ID, &UpdateDailyEntryRequest{ActualQuantity: &bad}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Negative quantity on update should fail validation, got %v", err)
	}
}

func TestDailyReportAggregates(t *testing.T) {
	env, lot := dailyTestLot(t)
	ctx := context.Background()

	entries := []CreateDailyEntryRequest{
		{EntryDate: "2026-03-02", PlannedQuantity: 100, ActualQuantity: 80, RejectedQuantity: 5, DowntimeHours: 1.5},
		{EntryDate: "2026-03-03", PlannedQuantity: 50, ActualQuantity: 50, ReworkQuantity: 2},
	}
	for i := range entries {
		if _, err := env.daily.Create(ctx, lot.ID, &entries[i], testUserID); err != nil {
			t.Fatalf("Create entry %d failed: %v", i, err)
		}
	}

	report, err := env.daily.Report(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report.TotalPlanned != 150 || report.TotalActual != 130 {
		t.Errorf("Totals = %v/%v, want 150/130", report.TotalPlanned, report.TotalActual)
	}
	if report.TotalRejected != 5 || report.TotalRework != 2 || report.TotalDowntime != 1.5 {
		t.Errorf("Got rejected=%v rework=%v downtime=%v", report.TotalRejected, report.TotalRework, report.TotalDowntime)
	}
	// 整体效率按合计数推导：round(130/150*100) = 87
	if report.OverallEfficiency != 87 {
		t.Errorf("OverallEfficiency = %v, want 87", report.OverallEfficiency)
	}
	if len(report.Entries) != 2 {
		t.Errorf("Expected 2 entries in report, got %d", len(report.Entries))
	}
}

func TestDeleteDailyEntry(t *testing.T) {
	env, lot := dailyTestLot(t)
	ctx := context.Background()

	e, err := env.daily.Create(ctx, lot.ID, &CreateDailyEntryRequest{
		EntryDate:       "2026-03-02",
		PlannedQuantity: 10,
	}, testUserID)
	if err != nil {
		t.Fatalf("Create daily entry failed: %v", err)
	}
	if err := env.daily.Delete(ctx, e.ID, testUserID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list, err := env.daily.ListByLot(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("ListByLot failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no entries after delete, got %d", len(list))
	}
}
