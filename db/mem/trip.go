package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	dbt "settlex/db/db"
	"settlex/split"
)

// inMemoryTripDBWrapper is an in-memory implementation of dbt.TripDBWrapper.
type inMemoryTripDBWrapper struct {
	tripsInfo map[uuid.UUID]*dbt.TripInfo
	tripsData map[uuid.UUID]*dbt.TripData

	mu sync.RWMutex
}

// NewInMemoryTripDBWrapper creates and returns a new instance of
// inMemoryTripDBWrapper.
func NewInMemoryTripDBWrapper() dbt.TripDBWrapper {
	return &inMemoryTripDBWrapper{
		tripsInfo: make(map[uuid.UUID]*dbt.TripInfo),
		tripsData: make(map[uuid.UUID]*dbt.TripData),
	}
}

// CreateTrip creates a new trip entry in memory.
func (db *inMemoryTripDBWrapper) CreateTrip(info *dbt.TripInfo) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tripsInfo[info.ID]; exists {
		return fmt.Errorf("trip with ID %s already exists", info.ID)
	}

	infoCopy := *info
	db.tripsInfo[info.ID] = &infoCopy
	db.tripsData[info.ID] = &dbt.TripData{
		Members:    []split.Member{},
		ExpenseIDs: []uuid.UUID{},
	}
	return nil
}

// GetTripInfo retrieves trip information by ID.
func (db *inMemoryTripDBWrapper) GetTripInfo(id uuid.UUID) (*dbt.TripInfo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	info, exists := db.tripsInfo[id]
	if !exists {
		return nil, fmt.Errorf("trip info with ID %s not found", id)
	}
	infoCopy := *info
	return &infoCopy, nil
}

// GetTrip retrieves a full trip (info, members, expense id list) by ID.
func (db *inMemoryTripDBWrapper) GetTrip(id uuid.UUID) (*dbt.Trip, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	info, exists := db.tripsInfo[id]
	if !exists {
		return nil, fmt.Errorf("trip with ID %s not found", id)
	}
	data := db.tripsData[id]

	trip := &dbt.Trip{TripInfo: *info}
	trip.Members = make([]split.Member, len(data.Members))
	copy(trip.Members, data.Members)
	trip.ExpenseIDs = make([]uuid.UUID, len(data.ExpenseIDs))
	copy(trip.ExpenseIDs, data.ExpenseIDs)
	return trip, nil
}

// GetTripExpenseIDs retrieves the linked expense ids for a trip.
func (db *inMemoryTripDBWrapper) GetTripExpenseIDs(id uuid.UUID) ([]uuid.UUID, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	data, exists := db.tripsData[id]
	if !exists {
		return nil, fmt.Errorf("trip data with ID %s not found", id)
	}

	idsCopy := make([]uuid.UUID, len(data.ExpenseIDs))
	copy(idsCopy, data.ExpenseIDs)
	return idsCopy, nil
}

// UpdateTripInfo updates the information of an existing trip.
func (db *inMemoryTripDBWrapper) UpdateTripInfo(info *dbt.TripInfo) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tripsInfo[info.ID]; !exists {
		return fmt.Errorf("trip with ID %s not found for update", info.ID)
	}

	infoCopy := *info
	db.tripsInfo[info.ID] = &infoCopy
	return nil
}

// TripMemberAdd adds a member to a trip's member list.
func (db *inMemoryTripDBWrapper) TripMemberAdd(id uuid.UUID, member split.Member) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, exists := db.tripsData[id]
	if !exists {
		return fmt.Errorf("trip with ID %s not found", id)
	}

	for _, m := range data.Members {
		if m.ID == member.ID {
			return fmt.Errorf("member %s already exists in trip %s", member.ID, id)
		}
	}

	data.Members = append(data.Members, member)
	return nil
}

// TripMemberRemove removes a member from a trip's member list.
func (db *inMemoryTripDBWrapper) TripMemberRemove(id uuid.UUID, memberID uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, exists := db.tripsData[id]
	if !exists {
		return fmt.Errorf("trip with ID %s not found", id)
	}

	foundIdx := -1
	for i, m := range data.Members {
		if m.ID == memberID {
			foundIdx = i
			break
		}
	}
	if foundIdx == -1 {
		return fmt.Errorf("member %s not found in trip %s", memberID, id)
	}

	data.Members = append(data.Members[:foundIdx], data.Members[foundIdx+1:]...)
	return nil
}

// LinkExpense attaches an expense id to a trip.
func (db *inMemoryTripDBWrapper) LinkExpense(tripID uuid.UUID, expenseID uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, exists := db.tripsData[tripID]
	if !exists {
		return fmt.Errorf("trip with ID %s not found", tripID)
	}

	for _, id := range data.ExpenseIDs {
		if id == expenseID {
			return fmt.Errorf("expense %s already linked to trip %s", expenseID, tripID)
		}
	}

	data.ExpenseIDs = append(data.ExpenseIDs, expenseID)
	return nil
}

// UnlinkExpense detaches an expense id from a trip.
func (db *inMemoryTripDBWrapper) UnlinkExpense(tripID uuid.UUID, expenseID uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, exists := db.tripsData[tripID]
	if !exists {
		return fmt.Errorf("trip with ID %s not found", tripID)
	}

	foundIdx := -1
	for i, id := range data.ExpenseIDs {
		if id == expenseID {
			foundIdx = i
			break
		}
	}
	if foundIdx == -1 {
		return fmt.Errorf("expense %s not linked to trip %s", expenseID, tripID)
	}

	data.ExpenseIDs = append(data.ExpenseIDs[:foundIdx], data.ExpenseIDs[foundIdx+1:]...)
	return nil
}

// DeleteTrip deletes a trip and its member/expense links. Linked expenses
// themselves live in the expense store and are not touched.
func (db *inMemoryTripDBWrapper) DeleteTrip(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tripsInfo[id]; !exists {
		return fmt.Errorf("trip with ID %s not found for deletion", id)
	}

	delete(db.tripsInfo, id)
	delete(db.tripsData, id)
	return nil
}

// DataLoaderGetTripInfoList batch-loads trip infos by id.
func (db *inMemoryTripDBWrapper) DataLoaderGetTripInfoList(_ context.Context, tripIds []uuid.UUID) (map[uuid.UUID]*dbt.TripInfo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make(map[uuid.UUID]*dbt.TripInfo, len(tripIds))
	for _, id := range tripIds {
		if info, exists := db.tripsInfo[id]; exists {
			infoCopy := *info
			result[id] = &infoCopy
		}
	}
	return result, nil
}

// DataLoaderGetTripExpenseIDList batch-loads expense id lists by trip id.
func (db *inMemoryTripDBWrapper) DataLoaderGetTripExpenseIDList(_ context.Context, tripIds []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make(map[uuid.UUID][]uuid.UUID, len(tripIds))
	for _, id := range tripIds {
		if data, exists := db.tripsData[id]; exists {
			idsCopy := make([]uuid.UUID, len(data.ExpenseIDs))
			copy(idsCopy, data.ExpenseIDs)
			result[id] = idsCopy
		}
	}
	return result, nil
}
