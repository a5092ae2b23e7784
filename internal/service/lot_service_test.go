package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
)

func TestCreateLotBuildsStandardProcesses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)

	// 28天窗口均分为四段，每道工序7天
	lot := env.createLot(t, bom.ID, testUserID, "LOT-2026-001", 10, "2026-03-01", "2026-03-29")

	processes, err := env.repos.Process.FindByLot(ctx, lot.ID)
	if err != nil {
		t.Fatalf("Failed to list processes: %v", err)
	}
	if len(processes) != len(entity.StandardProcessNames) {
		t.Fatalf("Expected %d processes, got %d", len(entity.StandardProcessNames), len(processes))
	}

	for i, p := range processes {
		if p.ProcessName != entity.StandardProcessNames[i] {
			t.Errorf("Process[%d] name = %s, want %s", i, p.ProcessName, entity.StandardProcessNames[i])
		}
		if p.ProcessSequence != i+1 {
			t.Errorf("Process[%d] sequence = %d, want %d", i, p.ProcessSequence, i+1)
		}
		if p.Status != entity.ProcessStatusPending {
			t.Errorf("Process[%d] status = %s, want pending", i, p.Status)
		}
		if d := p.PlannedEndDate.Sub(p.PlannedStartDate); d != 7*24*time.Hour {
			t.Errorf("Process[%d] window = %v, want 168h", i, d)
		}
	}

	last := processes[len(processes)-1]
	if !last.PlannedEndDate.Equal(lot.PlannedEndDate) {
		t.Errorf("Last process end %v should equal lot end %v", last.PlannedEndDate, lot.PlannedEndDate)
	}
}

func TestCreateLotEstimatesTotalCost(t *testing.T) {
	env := newTestEnv(t)
	bom := env.createBOM(t, testUserID)
	env.addBOMItem(t, bom.ID, testUserID, "Housing", 2, 10) // 单套 20
	env.addBOMItem(t, bom.ID, testUserID, "Screw", 8, 0.5)  // 单套 4

	lot := env.createLot(t, bom.ID, testUserID, "LOT-2026-002", 5, "2026-03-01", "2026-03-15")
	if lot.TotalEstimatedCost != 120 {
		t.Errorf("TotalEstimatedCost = %v, want 120", lot.TotalEstimatedCost)
	}
}

func TestCreateLotRejectsBadDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)

	_, err := env.lot.Create(ctx, &CreateLotRequest{
		BOMID:              bom.ID,
		LotNumber:          "LOT-BAD-DATES",
		ProductionQuantity: 1,
		PlannedStartDate:   "2026-03-20",
		PlannedEndDate:     "2026-03-01",
	}, testUserID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for end before start, got %v", err)
	}

	_, err = env.lot.Create(ctx, &CreateLotRequest{
		BOMID:              bom.ID,
		LotNumber:          "LOT-BAD-FORMAT",
		ProductionQuantity: 1,
		PlannedStartDate:   "03/01/2026",
		PlannedEndDate:     "2026-03-20",
	}, testUserID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for bad date format, got %v", err)
	}
}

func TestCreateLotDuplicateNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)

	env.createLot(t, bom.ID, testUserID, "LOT-DUP", 1, "2026-03-01", "2026-03-15")

	_, err := env.lot.Create(ctx, &CreateLotRequest{
		BOMID:              bom.ID,
		LotNumber:          "LOT-DUP",
		ProductionQuantity: 1,
		PlannedStartDate:   "2026-04-01",
		PlannedEndDate:     "2026-04-15",
	}, testUserID)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error for duplicate lot number, got %v", err)
	}
}

func TestCreateLotRejectsForeignSelectedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)
	other := env.createBOM(t, testUserID)
	foreign := env.addBOMItem(t, other.ID, testUserID, "Foreign Part", 1, 10)

	_, err := env.lot.Create(ctx, &CreateLotRequest{
		BOMID:              bom.ID,
		LotNumber:          "LOT-FOREIGN",
		ProductionQuantity: 1,
		PlannedStartDate:   "2026-03-01",
		PlannedEndDate:     "2026-03-15",
		SelectedItemIDs:    []string{foreign.ID},
	}, testUserID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for item from another BOM, got %v", err)
	}
}

func TestUpdateLotStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-STATUS", 1, "2026-03-01", "2026-03-15")

	status := entity.LotStatusInProduction
	updated, err := env.lot.Update(ctx, lot.ID, &UpdateLotRequest{Status: &status}, testUserID)
	if err != nil {
		t.Fatalf("planned -> in_production should succeed: %v", err)
	}
	if updated.ActualStartDate == nil {
		t.Error("Entering in_production should set actual start date")
	}

	status = entity.LotStatusCompleted
	updated, err = env.lot.Update(ctx, lot.ID, &UpdateLotRequest{Status: &status}, testUserID)
	if err != nil {
		t.Fatalf("in_production -> completed should succeed: %v", err)
	}
	if updated.ActualEndDate == nil {
		t.Error("Entering completed should set actual end date")
	}

	status = entity.LotStatusInProduction
	if _, err := env.lot.Update(ctx, lot.ID, &UpdateLotRequest{Status: &status}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("completed -> in_production should be rejected, got %v", err)
	}

	status = entity.LotStatusOnHold
	if _, err := env.lot.Update(ctx, lot.ID, &UpdateLotRequest{Status: &status}, testUserID); err != nil {
		t.Errorf("completed -> on_hold should succeed: %v", err)
	}
}

func TestUpdateStatusByProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-PROGRESS", 1, "2026-03-01", "2026-03-15")

	// 无进度不迁移
	_, changed, err := env.lot.UpdateStatusByProgress(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("UpdateStatusByProgress failed: %v", err)
	}
	if changed {
		t.Error("No progress should not change status")
	}

	if err := env.db.Model(&entity.ProductionProcess{}).
		Where("production_lot_id = ?", lot.ID).
		Update("completion_percentage", 50).Error; err != nil {
		t.Fatalf("Failed to set process progress: %v", err)
	}

	updated, changed, err := env.lot.UpdateStatusByProgress(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("UpdateStatusByProgress failed: %v", err)
	}
	if !changed || updated.Status != entity.LotStatusInProduction {
		t.Errorf("Partial progress should move lot to in_production, got changed=%v status=%s", changed, updated.Status)
	}

	if err := env.db.Model(&entity.ProductionProcess{}).
		Where("production_lot_id = ?", lot.ID).
		Update("completion_percentage", 100).Error; err != nil {
		t.Fatalf("Failed to complete processes: %v", err)
	}

	updated, changed, err = env.lot.UpdateStatusByProgress(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("UpdateStatusByProgress failed: %v", err)
	}
	if !changed || updated.Status != entity.LotStatusCompleted {
		t.Errorf("Full progress should complete lot, got changed=%v status=%s", changed, updated.Status)
	}
}

func TestLotVisibilityHiddenFromOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-PRIVATE", 1, "2026-03-01", "2026-03-15")

	if _, err := env.lot.GetByID(ctx, lot.ID, "someone-else"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Other user should get not found, got %v", err)
	}
	if err := env.lot.Delete(ctx, lot.ID, "someone-else"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Other user delete should get not found, got %v", err)
	}
	if err := env.lot.Delete(ctx, lot.ID, testUserID); err != nil {
		t.Errorf("Creator delete should succeed: %v", err)
	}
}

func TestGetSelectedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bom := env.createBOM(t, testUserID)
	item := env.addBOMItem(t, bom.ID, testUserID, "Selected Part", 1, 10)

	lot, err := env.lot.Create(ctx, &CreateLotRequest{
		BOMID:              bom.ID,
		LotNumber:          "LOT-SELECTED",
		ProductionQuantity: 2,
		PlannedStartDate:   "2026-03-01",
		PlannedEndDate:     "2026-03-15",
		SelectedItemIDs:    []string{item.ID},
	}, testUserID)
	if err != nil {
		t.Fatalf("Failed to create lot: %v", err)
	}

	items, err := env.lot.GetSelectedItems(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("GetSelectedItems failed: %v", err)
	}
	if len(items) != 1 || items[0].BOMItemID != item.ID {
		t.Errorf("Expected the selected item back, got %+v", items)
	}
}
