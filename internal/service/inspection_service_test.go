package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
)

func inspectionTestLot(t *testing.T) (*testEnv, *entity.ProductionLot) {
	t.Helper()
	env := newTestEnv(t)
	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-QC", 50, "2026-03-01", "2026-03-15")
	return env, lot
}

func TestCreateInspectionGeneratesSequentialCodes(t *testing.T) {
	env, lot := inspectionTestLot(t)
	ctx := context.Background()
	year := time.Now().Format("2006")

	first, err := env.inspection.Create(ctx, &CreateInspectionRequest{ProductionLotID: lot.ID}, testUserID)
	if err != nil {
		t.Fatalf("Create inspection failed: %v", err)
	}
	if want := fmt.Sprintf("QI-%s-0001", year); first.InspectionCode != want {
		t.Errorf("First code = %s, want %s", first.InspectionCode, want)
	}
	if first.Status != entity.InspectionStatusDraft {
		t.Errorf("New inspection status = %s, want draft", first.Status)
	}
	if first.InspectionType != "in_process" {
		t.Errorf("Default type = %s, want in_process", first.InspectionType)
	}

	second, err := env.inspection.Create(ctx, &CreateInspectionRequest{ProductionLotID: lot.ID}, testUserID)
	if err != nil {
		t.Fatalf("Create second inspection failed: %v", err)
	}
	if want := fmt.Sprintf("QI-%s-0002", year); second.InspectionCode != want {
		t.Errorf("Second code = %s, want %s", second.InspectionCode, want)
	}
}

func TestInspectionLifecycle(t *testing.T) {
	env, lot := inspectionTestLot(t)
	ctx := context.Background()

	inspection, err := env.inspection.Create(ctx, &CreateInspectionRequest{
		ProductionLotID: lot.ID,
		SampleQuantity:  10,
	}, testUserID)
	if err != nil {
		t.Fatalf("Create inspection failed: %v", err)
	}

	// 草稿不可直接提交结果或完成
	if _, err := env.inspection.SubmitResults(ctx, inspection.ID, &SubmitResultsRequest{PassedQuantity: 9}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Submit on draft should fail, got %v", err)
	}
	if _, err := env.inspection.Complete(ctx, inspection.ID, &CompleteRequest{Result: entity.InspectionResultPassed}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Complete on draft should fail, got %v", err)
	}
	if _, err := env.inspection.Approve(ctx, inspection.ID, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Approve on draft should fail, got %v", err)
	}

	started, err := env.inspection.Start(ctx, inspection.ID, testUserID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if started.Status != entity.InspectionStatusInProgress || started.InspectorID != testUserID {
		t.Errorf("Start should set in_progress/inspector, got %s/%s", started.Status, started.InspectorID)
	}
	if _, err := env.inspection.Start(ctx, inspection.ID, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Starting twice should fail, got %v", err)
	}

	if _, err := env.inspection.SubmitResults(ctx, inspection.ID, &SubmitResultsRequest{PassedQuantity: -1}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Negative quantity should fail, got %v", err)
	}

	submitted, err := env.inspection.SubmitResults(ctx, inspection.ID, &SubmitResultsRequest{
		PassedQuantity: 9,
		FailedQuantity: 1,
		ResultItems: []ResultItem{
			{Name: "Bore diameter", Standard: "25.00 ±0.02", Measured: "25.01", Passed: true, Quantity: 9},
			{Name: "Bore diameter", Standard: "25.00 ±0.02", Measured: "25.05", Passed: false, Quantity: 1},
		},
	}, testUserID)
	if err != nil {
		t.Fatalf("SubmitResults failed: %v", err)
	}
	// 提交后仍处于检验中，可覆盖提交
	if submitted.Status != entity.InspectionStatusInProgress {
		t.Errorf("Status after submit = %s, want in_progress", submitted.Status)
	}
	var items []ResultItem
	if err := json.Unmarshal(submitted.ResultItems, &items); err != nil || len(items) != 2 {
		t.Errorf("ResultItems not stored as JSON: %v, %d items", err, len(items))
	}

	if _, err := env.inspection.Complete(ctx, inspection.ID, &CompleteRequest{Result: "maybe"}, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Unknown result should fail, got %v", err)
	}
	completed, err := env.inspection.Complete(ctx, inspection.ID, &CompleteRequest{Result: entity.InspectionResultPassed}, testUserID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != entity.InspectionStatusCompleted || completed.InspectedAt == nil {
		t.Errorf("Complete should set completed status and timestamp: %+v", completed)
	}

	// 已完成不可删除
	if err := env.inspection.Delete(ctx, inspection.ID, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Delete on completed should fail, got %v", err)
	}

	approved, err := env.inspection.Approve(ctx, inspection.ID, testUserID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != entity.InspectionStatusApproved || approved.ApprovedBy != testUserID || approved.ApprovedAt == nil {
		t.Errorf("Approve should set approved/approver fields: %+v", approved)
	}
	// 已审批不可再审批
	if _, err := env.inspection.Reject(ctx, inspection.ID, testUserID); !errors.Is(err, ErrValidation) {
		t.Errorf("Review on approved should fail, got %v", err)
	}
}

func TestDeleteDraftInspection(t *testing.T) {
	env, lot := inspectionTestLot(t)
	ctx := context.Background()

	inspection, err := env.inspection.Create(ctx, &CreateInspectionRequest{ProductionLotID: lot.ID}, testUserID)
	if err != nil {
		t.Fatalf("Create inspection failed: %v", err)
	}
	if err := env.inspection.Delete(ctx, inspection.ID, testUserID); err != nil {
		t.Fatalf("Delete draft should succeed: %v", err)
	}
}

func TestCreateNonConformance(t *testing.T) {
	env, lot := inspectionTestLot(t)
	ctx := context.Background()

	inspection, err := env.inspection.Create(ctx, &CreateInspectionRequest{ProductionLotID: lot.ID}, testUserID)
	if err != nil {
		t.Fatalf("Create inspection failed: %v", err)
	}

	nc, err := env.inspection.CreateNonConformance(ctx, inspection.ID, &CreateNonConformanceRequest{
		Description: "Surface scratch on face B",
	}, testUserID)
	if err != nil {
		t.Fatalf("CreateNonConformance failed: %v", err)
	}
	if nc.Severity != "MEDIUM" || nc.Status != "OPEN" {
		t.Errorf("Defaults not applied: severity=%s status=%s", nc.Severity, nc.Status)
	}

	list, err := env.inspection.ListNonConformances(ctx, inspection.ID, testUserID)
	if err != nil {
		t.Fatalf("ListNonConformances failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 non-conformance, got %d", len(list))
	}
}

func TestInspectionMetrics(t *testing.T) {
	env, lot := inspectionTestLot(t)
	ctx := context.Background()

	runToCompletion := func(result string) {
		t.Helper()
		i, err := env.inspection.Create(ctx, &CreateInspectionRequest{ProductionLotID: lot.ID}, testUserID)
		if err != nil {
			t.Fatalf("Create inspection failed: %v", err)
		}
		if _, err := env.inspection.Start(ctx, i.ID, testUserID); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if _, err := env.inspection.Complete(ctx, i.ID, &CompleteRequest{Result: result}, testUserID); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}

	runToCompletion(entity.InspectionResultPassed)
	runToCompletion(entity.InspectionResultFailed)
	// 一张停留在草稿，不计入结论
	if _, err := env.inspection.Create(ctx, &CreateInspectionRequest{ProductionLotID: lot.ID}, testUserID); err != nil {
		t.Fatalf("Create draft inspection failed: %v", err)
	}

	metrics, err := env.inspection.Metrics(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if metrics.Total != 3 || metrics.Completed != 2 {
		t.Errorf("Total/Completed = %d/%d, want 3/2", metrics.Total, metrics.Completed)
	}
	if metrics.Passed != 1 || metrics.Failed != 1 || metrics.Conditional != 0 {
		t.Errorf("Result counts = %d/%d/%d, want 1/1/0", metrics.Passed, metrics.Failed, metrics.Conditional)
	}
	if metrics.PassRate != 50 {
		t.Errorf("PassRate = %v, want 50", metrics.PassRate)
	}
}
