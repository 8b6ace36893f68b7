package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbt "settlex/db/db"
	"settlex/split"
)

// GORMTripDBWrapper is a GORM-based PostgreSQL implementation of
// dbt.TripDBWrapper.
type GORMTripDBWrapper struct {
	db *gorm.DB
}

// NewGORMTripDBWrapper creates and returns a new instance of
// GORMTripDBWrapper.
func NewGORMTripDBWrapper(db *gorm.DB) dbt.TripDBWrapper {
	return &GORMTripDBWrapper{
		db: db,
	}
}

// CreateTrip creates a new trip entry using GORM.
func (pgdb *GORMTripDBWrapper) CreateTrip(info *dbt.TripInfo) error {
	tripModel := TripInfoModel{
		ID:   info.ID,
		Name: info.Name,
	}
	result := pgdb.db.Create(&tripModel)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("trip with ID %s already exists: %w", info.ID, result.Error)
		}
		return fmt.Errorf("failed to create trip: %w", result.Error)
	}
	return nil
}

// GetTripInfo retrieves trip information by ID using GORM.
func (pgdb *GORMTripDBWrapper) GetTripInfo(id uuid.UUID) (*dbt.TripInfo, error) {
	var tripInfoModel TripInfoModel
	result := pgdb.db.First(&tripInfoModel, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("trip info with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get trip info for ID %s: %w", id, result.Error)
	}
	return &dbt.TripInfo{
		ID:   tripInfoModel.ID,
		Name: tripInfoModel.Name,
	}, nil
}

// GetTrip retrieves a full trip (info, members, expense id list).
func (pgdb *GORMTripDBWrapper) GetTrip(id uuid.UUID) (*dbt.Trip, error) {
	info, err := pgdb.GetTripInfo(id)
	if err != nil {
		return nil, err
	}

	var memberModels []TripMemberModel
	if result := pgdb.db.Where("trip_id = ?", id).Order("created_at").Find(&memberModels); result.Error != nil {
		return nil, fmt.Errorf("failed to get members for trip %s: %w", id, result.Error)
	}

	expenseIDs, err := pgdb.GetTripExpenseIDs(id)
	if err != nil {
		return nil, err
	}

	trip := &dbt.Trip{TripInfo: *info}
	for _, mm := range memberModels {
		trip.Members = append(trip.Members, split.Member{
			ID:            mm.MemberID,
			Name:          mm.Name,
			WalletAddress: mm.WalletAddress,
			Weight:        mm.Weight,
		})
	}
	trip.ExpenseIDs = expenseIDs
	return trip, nil
}

// GetTripExpenseIDs retrieves the linked expense ids for a trip.
func (pgdb *GORMTripDBWrapper) GetTripExpenseIDs(id uuid.UUID) ([]uuid.UUID, error) {
	var linkModels []TripExpenseLinkModel
	result := pgdb.db.Where("trip_id = ?", id).Order("created_at").Find(&linkModels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get expense links for trip %s: %w", id, result.Error)
	}

	ids := make([]uuid.UUID, 0, len(linkModels))
	for _, lm := range linkModels {
		ids = append(ids, lm.ExpenseID)
	}
	return ids, nil
}

// UpdateTripInfo updates the information of an existing trip.
func (pgdb *GORMTripDBWrapper) UpdateTripInfo(info *dbt.TripInfo) error {
	result := pgdb.db.Model(&TripInfoModel{}).
		Where("id = ?", info.ID).
		Update("name", info.Name)
	if result.Error != nil {
		return fmt.Errorf("failed to update trip %s: %w", info.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("trip with ID %s not found for update", info.ID)
	}
	return nil
}

// TripMemberAdd adds a member to a trip's member list.
func (pgdb *GORMTripDBWrapper) TripMemberAdd(id uuid.UUID, member split.Member) error {
	memberModel := TripMemberModel{
		TripID:        id,
		MemberID:      member.ID,
		Name:          member.Name,
		WalletAddress: member.WalletAddress,
		Weight:        member.Weight,
	}
	result := pgdb.db.Create(&memberModel)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("member %s already exists in trip %s: %w", member.ID, id, result.Error)
		}
		if strings.Contains(result.Error.Error(), "violates foreign key constraint") {
			return fmt.Errorf("trip with ID %s not found: %w", id, result.Error)
		}
		return fmt.Errorf("failed to add member to trip %s: %w", id, result.Error)
	}
	return nil
}

// TripMemberRemove removes a member from a trip's member list.
func (pgdb *GORMTripDBWrapper) TripMemberRemove(id uuid.UUID, memberID uuid.UUID) error {
	result := pgdb.db.Delete(&TripMemberModel{}, "trip_id = ? AND member_id = ?", id, memberID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove member from trip %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("member %s not found in trip %s", memberID, id)
	}
	return nil
}

// LinkExpense attaches an expense id to a trip.
func (pgdb *GORMTripDBWrapper) LinkExpense(tripID uuid.UUID, expenseID uuid.UUID) error {
	linkModel := TripExpenseLinkModel{
		TripID:    tripID,
		ExpenseID: expenseID,
	}
	result := pgdb.db.Create(&linkModel)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("expense %s already linked to trip %s: %w", expenseID, tripID, result.Error)
		}
		if strings.Contains(result.Error.Error(), "violates foreign key constraint") {
			return fmt.Errorf("trip with ID %s not found: %w", tripID, result.Error)
		}
		return fmt.Errorf("failed to link expense %s to trip %s: %w", expenseID, tripID, result.Error)
	}
	return nil
}

// UnlinkExpense detaches an expense id from a trip.
func (pgdb *GORMTripDBWrapper) UnlinkExpense(tripID uuid.UUID, expenseID uuid.UUID) error {
	result := pgdb.db.Delete(&TripExpenseLinkModel{}, "trip_id = ? AND expense_id = ?", tripID, expenseID)
	if result.Error != nil {
		return fmt.Errorf("failed to unlink expense %s from trip %s: %w", expenseID, tripID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("expense %s not linked to trip %s", expenseID, tripID)
	}
	return nil
}

// DeleteTrip deletes a trip with its member and expense links. Linked
// expenses live in the expense store and are not touched.
func (pgdb *GORMTripDBWrapper) DeleteTrip(id uuid.UUID) error {
	return pgdb.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("trip_id = ?", id).Delete(&TripExpenseLinkModel{}); result.Error != nil {
			return result.Error
		}
		if result := tx.Where("trip_id = ?", id).Delete(&TripMemberModel{}); result.Error != nil {
			return result.Error
		}
		result := tx.Delete(&TripInfoModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("trip with ID %s not found for deletion", id)
		}
		return nil
	})
}

// DataLoaderGetTripInfoList batch-loads trip infos by id.
func (pgdb *GORMTripDBWrapper) DataLoaderGetTripInfoList(ctx context.Context, tripIds []uuid.UUID) (map[uuid.UUID]*dbt.TripInfo, error) {
	if len(tripIds) == 0 {
		return map[uuid.UUID]*dbt.TripInfo{}, nil
	}

	var tripInfoModels []TripInfoModel
	if result := pgdb.db.WithContext(ctx).Where("id IN ?", tripIds).Find(&tripInfoModels); result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load trip infos: %w", result.Error)
	}

	result := make(map[uuid.UUID]*dbt.TripInfo, len(tripInfoModels))
	for _, tm := range tripInfoModels {
		result[tm.ID] = &dbt.TripInfo{
			ID:   tm.ID,
			Name: tm.Name,
		}
	}
	return result, nil
}

// DataLoaderGetTripExpenseIDList batch-loads expense id lists by trip id.
func (pgdb *GORMTripDBWrapper) DataLoaderGetTripExpenseIDList(ctx context.Context, tripIds []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	if len(tripIds) == 0 {
		return map[uuid.UUID][]uuid.UUID{}, nil
	}

	var linkModels []TripExpenseLinkModel
	if result := pgdb.db.WithContext(ctx).Where("trip_id IN ?", tripIds).Order("created_at").Find(&linkModels); result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load trip expense links: %w", result.Error)
	}

	result := make(map[uuid.UUID][]uuid.UUID)
	for _, lm := range linkModels {
		result[lm.TripID] = append(result[lm.TripID], lm.ExpenseID)
	}
	return result, nil
}
