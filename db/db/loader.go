package db

import (
	"github.com/google/uuid"
	"github.com/vikstrous/dataloadgen"

	"settlex/split"
)

type dataLoaderKey string

const (
	DataLoaderKeySettlement dataLoaderKey = "settlement_data_loader"
)

// SettlementDataLoader batches the per-id store reads the trip settlement
// view fans out into. One loader instance is injected per request.
//
//	loader, ok := ctx.Value(db.DataLoaderKeySettlement).(*db.SettlementDataLoader)
//	if !ok {
//		return nil, fmt.Errorf("data loader is not available")
//	}
type SettlementDataLoader struct {
	GetExpenseList       *dataloadgen.Loader[uuid.UUID, *Expense]
	GetShareList         *dataloadgen.Loader[uuid.UUID, []split.Share]
	GetTripInfoList      *dataloadgen.Loader[uuid.UUID, *TripInfo]
	GetTripExpenseIDList *dataloadgen.Loader[uuid.UUID, []uuid.UUID]
}

func NewSettlementDataLoader(expenses ExpenseDBWrapper, trips TripDBWrapper) *SettlementDataLoader {
	return &SettlementDataLoader{
		GetExpenseList:       dataloadgen.NewMappedLoader(expenses.DataLoaderGetExpenseList),
		GetShareList:         dataloadgen.NewMappedLoader(expenses.DataLoaderGetShareList),
		GetTripInfoList:      dataloadgen.NewMappedLoader(trips.DataLoaderGetTripInfoList),
		GetTripExpenseIDList: dataloadgen.NewMappedLoader(trips.DataLoaderGetTripExpenseIDList),
	}
}
