package service

import (
	"context"
	"strings"
	"testing"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
)

func TestShortageSeverity(t *testing.T) {
	cases := []struct {
		required float64
		approved float64
		want     string
	}{
		{100, 40, entity.AlertSeverityCritical},
		{100, 49.9, entity.AlertSeverityCritical},
		{100, 50, entity.AlertSeverityHigh},
		{100, 70, entity.AlertSeverityHigh},
		{100, 79.9, entity.AlertSeverityHigh},
		{100, 80, ""},
		{100, 85, ""},
		{100, 100, ""},
		{0, 0, ""}, // 无需求不算短缺
	}

	for _, tc := range cases {
		if got := ShortageSeverity(tc.required, tc.approved); got != tc.want {
			t.Errorf("ShortageSeverity(%v, %v) = %q, want %q", tc.required, tc.approved, got, tc.want)
		}
	}
}

func TestInitializeLotMaterials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bom := env.createBOM(t, testUserID)
	env.addBOMItem(t, bom.ID, testUserID, "Spindle", 1, 1500)
	env.addBOMItem(t, bom.ID, testUserID, "Motor", 2, 600)
	env.addBOMItem(t, bom.ID, testUserID, "Bracket", 4, 150)
	env.addBOMItem(t, bom.ID, testUserID, "Bolt", 16, 2)

	lot := env.createLot(t, bom.ID, testUserID, "LOT-MAT", 3, "2026-03-01", "2026-03-15")

	materials, err := env.material.InitializeLotMaterials(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("InitializeLotMaterials failed: %v", err)
	}
	if len(materials) != 4 {
		t.Fatalf("Expected 4 material rows, got %d", len(materials))
	}

	wantByName := map[string]struct {
		required    float64
		criticality string
	}{
		"Spindle": {3, entity.CriticalityCritical},
		"Motor":   {6, entity.CriticalityHigh},
		"Bracket": {12, entity.CriticalityMedium},
		"Bolt":    {48, entity.CriticalityLow},
	}
	for _, m := range materials {
		if m.BOMItem == nil {
			t.Fatalf("Material %s should preload its BOM item", m.ID)
		}
		want, ok := wantByName[m.BOMItem.Name]
		if !ok {
			t.Fatalf("Unexpected material row for %s", m.BOMItem.Name)
		}
		if m.RequiredQuantity != want.required {
			t.Errorf("%s required = %v, want %v", m.BOMItem.Name, m.RequiredQuantity, want.required)
		}
		if m.Criticality != want.criticality {
			t.Errorf("%s criticality = %s, want %s", m.BOMItem.Name, m.Criticality, want.criticality)
		}
		if m.Status != entity.MaterialStatusPending {
			t.Errorf("%s status = %s, want pending", m.BOMItem.Name, m.Status)
		}
	}

	// 重复初始化幂等
	again, err := env.material.InitializeLotMaterials(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("Second initialize failed: %v", err)
	}
	if len(again) != 4 {
		t.Errorf("Re-initialize should keep 4 rows, got %d", len(again))
	}
}

func TestUpdateMaterialPartialFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bom := env.createBOM(t, testUserID)
	env.addBOMItem(t, bom.ID, testUserID, "Plate", 10, 20)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-MAT-UPD", 10, "2026-03-01", "2026-03-15")
	materials, err := env.material.InitializeLotMaterials(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("InitializeLotMaterials failed: %v", err)
	}

	ordered := 100.0
	status := entity.MaterialStatusOrdered
	m, err := env.material.UpdateMaterial(ctx, materials[0].ID, &UpdateMaterialRequest{
		OrderedQuantity: &ordered,
		Status:          &status,
	}, testUserID)
	if err != nil {
		t.Fatalf("UpdateMaterial failed: %v", err)
	}
	if m.OrderedQuantity != 100 || m.Status != entity.MaterialStatusOrdered {
		t.Errorf("Got ordered=%v status=%s, want 100/ordered", m.OrderedQuantity, m.Status)
	}
	if m.RequiredQuantity != 100 {
		t.Errorf("Untouched required quantity changed: %v", m.RequiredQuantity)
	}
}

func TestListAlertsSynthesizesShortages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bom := env.createBOM(t, testUserID)
	env.addBOMItem(t, bom.ID, testUserID, "Bearing", 10, 80)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-SHORT", 10, "2026-03-01", "2026-03-15")
	materials, err := env.material.InitializeLotMaterials(ctx, lot.ID, testUserID)
	if err != nil {
		t.Fatalf("InitializeLotMaterials failed: %v", err)
	}

	// 合格 40 / 需求 100 -> CRITICAL 短缺
	approved := 40.0
	if _, err := env.material.UpdateMaterial(ctx, materials[0].ID, &UpdateMaterialRequest{
		ApprovedQuantity: &approved,
	}, testUserID); err != nil {
		t.Fatalf("UpdateMaterial failed: %v", err)
	}

	alerts, err := env.material.ListAlerts(ctx, lot.ID, entity.AlertStatusActive, testUserID)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 synthesized shortage alert, got %d", len(alerts))
	}
	a := alerts[0]
	if !strings.HasPrefix(a.ID, "shortage-") {
		t.Errorf("Synthesized alert ID = %s, want shortage- prefix", a.ID)
	}
	if a.Severity != entity.AlertSeverityCritical {
		t.Errorf("Severity = %s, want CRITICAL", a.Severity)
	}
	if a.Source != entity.AlertSourceShortage {
		t.Errorf("Source = %s, want material_shortage", a.Source)
	}
	if !strings.Contains(a.Message, "Bearing") {
		t.Errorf("Message should name the part: %s", a.Message)
	}

	// 短缺告警不落库，resolved 过滤下不可见
	resolved, err := env.material.ListAlerts(ctx, lot.ID, entity.AlertStatusResolved, testUserID)
	if err != nil {
		t.Fatalf("ListAlerts(resolved) failed: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("Shortage alerts should not appear under resolved filter, got %d", len(resolved))
	}

	// 补足合格数量后告警消失
	approved = 100
	if _, err := env.material.UpdateMaterial(ctx, materials[0].ID, &UpdateMaterialRequest{
		ApprovedQuantity: &approved,
	}, testUserID); err != nil {
		t.Fatalf("UpdateMaterial failed: %v", err)
	}
	alerts, err = env.material.ListAlerts(ctx, lot.ID, entity.AlertStatusActive, testUserID)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Replenished material should clear shortage alert, got %d", len(alerts))
	}
}

func TestCreateAndResolveAlert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bom := env.createBOM(t, testUserID)
	lot := env.createLot(t, bom.ID, testUserID, "LOT-ALERT", 1, "2026-03-01", "2026-03-15")

	alert, err := env.material.CreateAlert(ctx, lot.ID, &CreateAlertRequest{
		AlertType: "machine_breakdown",
		Severity:  entity.AlertSeverityHigh,
		Message:   "CNC-03 spindle fault",
	}, testUserID)
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}
	if alert.Status != entity.AlertStatusActive || alert.Source != entity.AlertSourceManual {
		t.Errorf("New alert should be active/manual, got %s/%s", alert.Status, alert.Source)
	}

	resolved, err := env.material.ResolveAlert(ctx, alert.ID, testUserID)
	if err != nil {
		t.Fatalf("ResolveAlert failed: %v", err)
	}
	if resolved.Status != entity.AlertStatusResolved || resolved.ResolvedBy != testUserID || resolved.ResolvedAt == nil {
		t.Errorf("Resolved alert missing resolution fields: %+v", resolved)
	}

	alerts, err := env.material.ListAlerts(ctx, lot.ID, entity.AlertStatusActive, testUserID)
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Resolved alert should leave active list empty, got %d", len(alerts))
	}
}
