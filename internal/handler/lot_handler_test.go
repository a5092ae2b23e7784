package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/abushana-oss/mithran-mes/internal/testutil"
	"github.com/gin-gonic/gin"
)

func setupLotAPI(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	ownership := service.NewOwnershipService(repos)
	svc := &service.Services{
		Ownership:  ownership,
		BOM:        service.NewBOMService(repos.BOM, ownership),
		Lot:        service.NewLotService(repos.Lot, repos.BOM, repos.Process, ownership),
		Process:    service.NewProcessService(repos.Process, repos.Lot, repos.BOM, ownership),
		Vendor:     service.NewVendorService(repos.Vendor, repos.Lot, repos.BOM, ownership),
		Material:   service.NewMaterialService(repos.Material, repos.Lot, repos.BOM, ownership),
		Daily:      service.NewDailyService(repos.Daily, repos.Lot, ownership),
		Remark:     service.NewRemarkService(repos.Remark, repos.Lot, repos.Process, repos.BOM, ownership),
		Inspection: service.NewInspectionService(repos.Inspection, repos.Lot, ownership),
	}
	h := NewHandlers(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")

	boms := api.Group("/boms")
	{
		boms.POST("", h.BOM.Create)
		boms.POST("/:id/items", h.BOM.AddItem)
	}
	lots := api.Group("/production-planning/lots")
	{
		lots.POST("", h.Lot.Create)
		lots.GET("/:id", h.Lot.Get)
		lots.PUT("/:id", h.Lot.Update)
		lots.GET("/:id/processes", h.Process.ListByLot)
		lots.POST("/:id/materials/initialize", h.Material.Initialize)
	}
	return r
}

func createBOMViaAPI(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"name": "Pump Assembly",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating BOM, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func createLotViaAPI(t *testing.T, r *gin.Engine, token, bomID, lotNumber string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/production-planning/lots", map[string]interface{}{
		"bom_id":              bomID,
		"lot_number":          lotNumber,
		"production_quantity": 10,
		"planned_start_date":  "2026-03-01",
		"planned_end_date":    "2026-03-29",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating lot, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})
}

func TestLotEndpointsRequireAuth(t *testing.T) {
	r := setupLotAPI(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/production-planning/lots/some-id", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestCreateAndGetLot(t *testing.T) {
	r := setupLotAPI(t)
	token := testutil.DefaultTestToken()

	bomID := createBOMViaAPI(t, r, token)
	lot := createLotViaAPI(t, r, token, bomID, "LOT-API-001")

	if lot["status"] != "planned" {
		t.Errorf("New lot status = %v, want planned", lot["status"])
	}

	lotID := lot["id"].(string)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/production-planning/lots/"+lotID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["lot_number"] != "LOT-API-001" {
		t.Errorf("lot_number = %v, want LOT-API-001", data["lot_number"])
	}

	// 自动创建的标准工序
	w = testutil.DoRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/production-planning/lots/%s/processes", lotID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing processes, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	processes := data["processes"].([]interface{})
	if len(processes) != 4 {
		t.Errorf("Expected 4 standard processes, got %d", len(processes))
	}
}

func TestCreateLotDuplicateNumberReturns400(t *testing.T) {
	r := setupLotAPI(t)
	token := testutil.DefaultTestToken()

	bomID := createBOMViaAPI(t, r, token)
	createLotViaAPI(t, r, token, bomID, "LOT-API-DUP")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/production-planning/lots", map[string]interface{}{
		"bom_id":              bomID,
		"lot_number":          "LOT-API-DUP",
		"production_quantity": 5,
		"planned_start_date":  "2026-04-01",
		"planned_end_date":    "2026-04-15",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate lot number, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Errorf("Expected business code 40000, got %v", resp["code"])
	}
}

func TestGetLotHiddenFromOtherUser(t *testing.T) {
	r := setupLotAPI(t)
	token := testutil.DefaultTestToken()

	bomID := createBOMViaAPI(t, r, token)
	lot := createLotViaAPI(t, r, token, bomID, "LOT-API-PRIVATE")

	otherToken := testutil.GenerateTestToken("intruder-001", "Intruder", "intruder@test.com")
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/production-planning/lots/"+lot["id"].(string), nil, otherToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's lot, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateLotInvalidTransitionReturns400(t *testing.T) {
	r := setupLotAPI(t)
	token := testutil.DefaultTestToken()

	bomID := createBOMViaAPI(t, r, token)
	lot := createLotViaAPI(t, r, token, bomID, "LOT-API-STATUS")
	lotID := lot["id"].(string)

	// planned -> completed 不在迁移表内
	w := testutil.DoRequest(r, http.MethodPut, "/api/v1/production-planning/lots/"+lotID, map[string]interface{}{
		"status": "completed",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for invalid transition, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production-planning/lots/"+lotID, map[string]interface{}{
		"status": "in_production",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for valid transition, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "in_production" {
		t.Errorf("status = %v, want in_production", data["status"])
	}
}

func TestInitializeMaterialsViaAPI(t *testing.T) {
	r := setupLotAPI(t)
	token := testutil.DefaultTestToken()

	bomID := createBOMViaAPI(t, r, token)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/boms/"+bomID+"/items", map[string]interface{}{
		"name":      "Casing",
		"item_type": "child_part",
		"quantity":  2,
		"unit_cost": 700,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 adding item, got %d: %s", w.Code, w.Body.String())
	}

	lot := createLotViaAPI(t, r, token, bomID, "LOT-API-MAT")
	w = testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/production-planning/lots/%s/materials/initialize", lot["id"]), nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 initializing materials, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	materials := data["materials"].([]interface{})
	if len(materials) != 1 {
		t.Fatalf("Expected 1 material row, got %d", len(materials))
	}
	m := materials[0].(map[string]interface{})
	if m["required_quantity"].(float64) != 20 {
		t.Errorf("required_quantity = %v, want 20", m["required_quantity"])
	}
	if m["criticality"] != "high" {
		t.Errorf("criticality = %v, want high", m["criticality"])
	}
}
