package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
)

func processTestLot(t *testing.T) (*testEnv, *entity.ProductionLot) {
	t.Helper()
	env := newTestEnv(t)
	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-PROC", 5, "2026-03-01", "2026-03-15")
	return env, lot
}

func TestCreateProcessAppendsSequence(t *testing.T) {
	env, lot := processTestLot(t)

	// 批次创建已带四道标准工序，新工序接在其后
	p, err := env.process.Create(context.Background(), lot.ID, &CreateProcessRequest{
		ProcessName: "Surface Treatment",
	}, testUserID)
	if err != nil {
		t.Fatalf("Create process failed: %v", err)
	}
	if p.ProcessSequence != len(entity.StandardProcessNames)+1 {
		t.Errorf("ProcessSequence = %d, want %d", p.ProcessSequence, len(entity.StandardProcessNames)+1)
	}
	if p.Status != entity.ProcessStatusPending {
		t.Errorf("Status = %s, want pending", p.Status)
	}
}

func TestUpdateProcessStatusAndAllocation(t *testing.T) {
	env, lot := processTestLot(t)
	ctx := context.Background()

	processes, err := env.process.ListByLot(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("ListByLot failed: %v", err)
	}
	p := processes[0]

	status := entity.ProcessStatusInProgress
	updated, err := env.process.Update(ctx, p.ID, &UpdateProcessRequest{
		Status: &status,
		MachineAllocations: []MachineAllocation{
			{MachineID: "CNC-03", MachineName: "Mazak VCN", Shift: "A", Operator: "Ravi"},
		},
	}, testUserID)
	if err != nil {
		t.Fatalf("Update process failed: %v", err)
	}
	if updated.ActualStartDate == nil {
		t.Error("Entering in_progress should set actual start date")
	}
	var allocs []MachineAllocation
	if err := json.Unmarshal(updated.MachineAllocation, &allocs); err != nil || len(allocs) != 1 || allocs[0].MachineID != "CNC-03" {
		t.Errorf("Machine allocation not stored: %v %+v", err, allocs)
	}

	bad := 120.0
	if _, err := env.process.Update(ctx, p.ID, &UpdateProcessRequest{CompletionPercentage: &bad}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Completion over 100 should fail, got %v", err)
	}

	status = entity.ProcessStatusCompleted
	updated, err = env.process.Update(ctx, p.ID, &UpdateProcessRequest{Status: &status}, testUserID)
	if err != nil {
		t.Fatalf("Complete process failed: %v", err)
	}
	if updated.CompletionPercentage != 100 || updated.ActualEndDate == nil {
		t.Errorf("Completing should force 100%% and set end date: %+v", updated)
	}
}

func TestCreateSubtaskWithBomParts(t *testing.T) {
	env, lot := processTestLot(t)
	ctx := context.Background()

	bomItem := env.addBOMItem(t, lot.BOMID, testUserID, "Blank", 1, 40)
	processes, err := env.process.ListByLot(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("ListByLot failed: %v", err)
	}
	pid := processes[0].ID

	subtask, err := env.process.CreateSubtask(ctx, pid, &CreateSubtaskRequest{
		TaskName:         "Rough cut",
		AssignedOperator: "Suresh",
		BomParts: []SubtaskBomPartRequest{
			{BOMItemID: bomItem.ID, RequiredQuantity: 5, Unit: "pcs"},
		},
	}, testUserID)
	if err != nil {
		t.Fatalf("CreateSubtask failed: %v", err)
	}
	if subtask.TaskSequence != 1 {
		t.Errorf("TaskSequence = %d, want 1", subtask.TaskSequence)
	}
	if len(subtask.Requirements) != 1 || subtask.Requirements[0].SubtaskID != subtask.ID {
		t.Errorf("Requirements not linked to subtask: %+v", subtask.Requirements)
	}

	second, err := env.process.CreateSubtask(ctx, pid, &CreateSubtaskRequest{TaskName: "Finish cut"}, testUserID)
	if err != nil {
		t.Fatalf("CreateSubtask failed: %v", err)
	}
	if second.TaskSequence != 2 {
		t.Errorf("Second TaskSequence = %d, want 2", second.TaskSequence)
	}
}

func TestCreateSubtaskValidatesBomParts(t *testing.T) {
	env, lot := processTestLot(t)
	ctx := context.Background()

	processes, err := env.process.ListByLot(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("ListByLot failed: %v", err)
	}
	pid := processes[0].ID

	cases := []SubtaskBomPartRequest{
		{BOMItemID: "", RequiredQuantity: 1, Unit: "pcs"},
		{BOMItemID: "nonexistent", RequiredQuantity: 0, Unit: "pcs"},
		{BOMItemID: "nonexistent", RequiredQuantity: 1, Unit: ""},
		{BOMItemID: "nonexistent", RequiredQuantity: 1, Unit: "pcs"},
	}
	for i, part := range cases {
		_, err := env.process.CreateSubtask(ctx, pid, &CreateSubtaskRequest{
			TaskName: "Bad parts",
			BomParts: []SubtaskBomPartRequest{part},
		}, testUserID)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Case %d should fail validation, got %v", i, err)
		}
	}
}
