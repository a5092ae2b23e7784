package service

import (
	"context"
	"testing"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/testutil"
	"gorm.io/gorm"
)

const testUserID = "test-user-001"

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories

	bom        *BOMService
	lot        *LotService
	process    *ProcessService
	vendor     *VendorService
	material   *MaterialService
	daily      *DailyService
	remark     *RemarkService
	inspection *InspectionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	ownership := NewOwnershipService(repos)

	return &testEnv{
		db:         db,
		repos:      repos,
		bom:        NewBOMService(repos.BOM, ownership),
		lot:        NewLotService(repos.Lot, repos.BOM, repos.Process, ownership),
		process:    NewProcessService(repos.Process, repos.Lot, repos.BOM, ownership),
		vendor:     NewVendorService(repos.Vendor, repos.Lot, repos.BOM, ownership),
		material:   NewMaterialService(repos.Material, repos.Lot, repos.BOM, ownership),
		daily:      NewDailyService(repos.Daily, repos.Lot, ownership),
		remark:     NewRemarkService(repos.Remark, repos.Lot, repos.Process, repos.BOM, ownership),
		inspection: NewInspectionService(repos.Inspection, repos.Lot, ownership),
	}
}

func (e *testEnv) createBOM(t *testing.T, userID string) *entity.BOM {
	t.Helper()
	bom, err := e.bom.Create(context.Background(), &CreateBOMRequest{Name: "Test BOM"}, userID)
	if err != nil {
		t.Fatalf("Failed to create BOM: %v", err)
	}
	return bom
}

func (e *testEnv) addBOMItem(t *testing.T, bomID, userID, name string, quantity, unitCost float64) *entity.BOMItem {
	t.Helper()
	item, err := e.bom.AddItem(context.Background(), bomID, &CreateBOMItemRequest{
		Name:     name,
		ItemType: entity.ItemTypeChildPart,
		Quantity: quantity,
		UnitCost: unitCost,
	}, userID)
	if err != nil {
		t.Fatalf("Failed to add BOM item %s: %v", name, err)
	}
	return item
}

func (e *testEnv) createLot(t *testing.T, bomID, userID, lotNumber string, quantity float64, start, end string) *entity.ProductionLot {
	t.Helper()
	lot, err := e.lot.Create(context.Background(), &CreateLotRequest{
		BOMID:              bomID,
		LotNumber:          lotNumber,
		ProductionQuantity: quantity,
		PlannedStartDate:   start,
		PlannedEndDate:     end,
	}, userID)
	if err != nil {
		t.Fatalf("Failed to create lot %s: %v", lotNumber, err)
	}
	return lot
}
