package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbt "settlex/db/db"
	"settlex/split"
)

// GORMExpenseDBWrapper is a GORM-based PostgreSQL implementation of
// dbt.ExpenseDBWrapper.
type GORMExpenseDBWrapper struct {
	db *gorm.DB
}

// NewGORMExpenseDBWrapper creates and returns a new instance of
// GORMExpenseDBWrapper.
func NewGORMExpenseDBWrapper(db *gorm.DB) dbt.ExpenseDBWrapper {
	return &GORMExpenseDBWrapper{
		db: db,
	}
}

// CreateExpense persists an expense with its members and shares in one
// transaction.
func (pgdb *GORMExpenseDBWrapper) CreateExpense(expense *dbt.Expense) error {
	if expense.Payer() == nil {
		return fmt.Errorf("expense %s: payer %s is not a member", expense.ID, expense.PayerID)
	}

	expenseModel := ExpenseModel{
		ID:          expense.ID,
		Title:       expense.Title,
		TotalAmount: expense.TotalAmount,
		SplitMode:   string(expense.SplitMode),
		PayerID:     expense.PayerID,
		Settled:     expense.Settled,
		CreatedAt:   expense.CreatedAt,
	}

	memberModels := make([]ExpenseMemberModel, 0, len(expense.Members))
	for i, m := range expense.Members {
		memberModels = append(memberModels, ExpenseMemberModel{
			ExpenseID:     expense.ID,
			MemberID:      m.ID,
			Name:          m.Name,
			WalletAddress: m.WalletAddress,
			Weight:        m.Weight,
			Position:      i,
		})
	}

	shareModels := make([]ShareModel, 0, len(expense.Shares))
	for i, s := range expense.Shares {
		shareModels = append(shareModels, ShareModel{
			ExpenseID:     expense.ID,
			MemberID:      s.MemberID,
			Name:          s.Name,
			WalletAddress: s.WalletAddress,
			Amount:        s.Amount,
			Paid:          s.Paid,
			TxHash:        s.TxHash,
			Position:      i,
		})
	}

	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&expenseModel); result.Error != nil {
			return result.Error
		}
		if len(memberModels) > 0 {
			if result := tx.Create(&memberModels); result.Error != nil {
				return result.Error
			}
		}
		if len(shareModels) > 0 {
			if result := tx.Create(&shareModels); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("expense with ID %s already exists: %w", expense.ID, err)
		}
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its members and shares.
func (pgdb *GORMExpenseDBWrapper) GetExpense(id uuid.UUID) (*dbt.Expense, error) {
	var expenseModel ExpenseModel
	result := pgdb.db.First(&expenseModel, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("expense with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get expense %s: %w", id, result.Error)
	}

	var memberModels []ExpenseMemberModel
	if result := pgdb.db.Where("expense_id = ?", id).Order("position").Find(&memberModels); result.Error != nil {
		return nil, fmt.Errorf("failed to get members for expense %s: %w", id, result.Error)
	}

	var shareModels []ShareModel
	if result := pgdb.db.Where("expense_id = ?", id).Order("position").Find(&shareModels); result.Error != nil {
		return nil, fmt.Errorf("failed to get shares for expense %s: %w", id, result.Error)
	}

	return assembleExpense(&expenseModel, memberModels, shareModels), nil
}

// GetExpenseShares retrieves the current shares of an expense.
func (pgdb *GORMExpenseDBWrapper) GetExpenseShares(id uuid.UUID) ([]split.Share, error) {
	var shareModels []ShareModel
	result := pgdb.db.Where("expense_id = ?", id).Order("position").Find(&shareModels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get shares for expense %s: %w", id, result.Error)
	}

	shares := make([]split.Share, 0, len(shareModels))
	for _, sm := range shareModels {
		shares = append(shares, shareFromModel(sm))
	}
	return shares, nil
}

// MarkSharePaid flips one member's share to paid. The share row is locked
// for the duration of the transaction, and the settled flag is recomputed
// from the rows as they are after the update, so concurrent payers on the
// same expense cannot lose each other's writes.
func (pgdb *GORMExpenseDBWrapper) MarkSharePaid(expenseID uuid.UUID, memberID uuid.UUID, txHash string) (*dbt.Expense, error) {
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		var share ShareModel
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&share, "expense_id = ? AND member_id = ?", expenseID, memberID)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				return fmt.Errorf("share for member %s not found in expense %s", memberID, expenseID)
			}
			return result.Error
		}

		share.Paid = true
		share.TxHash = txHash
		if result := tx.Save(&share); result.Error != nil {
			return result.Error
		}

		var unpaid int64
		if result := tx.Model(&ShareModel{}).
			Where("expense_id = ? AND paid = false", expenseID).
			Count(&unpaid); result.Error != nil {
			return result.Error
		}

		return tx.Model(&ExpenseModel{}).
			Where("id = ?", expenseID).
			Update("settled", unpaid == 0).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark share paid for expense %s: %w", expenseID, err)
	}

	return pgdb.GetExpense(expenseID)
}

// DeleteExpense deletes an expense with its members and shares.
func (pgdb *GORMExpenseDBWrapper) DeleteExpense(id uuid.UUID) error {
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("expense_id = ?", id).Delete(&ShareModel{}); result.Error != nil {
			return result.Error
		}
		if result := tx.Where("expense_id = ?", id).Delete(&ExpenseMemberModel{}); result.Error != nil {
			return result.Error
		}
		result := tx.Delete(&ExpenseModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("expense with ID %s not found for deletion", id)
		}
		return nil
	})
	return err
}

// DataLoaderGetExpenseList batch-loads expenses with members and shares.
func (pgdb *GORMExpenseDBWrapper) DataLoaderGetExpenseList(ctx context.Context, expenseIds []uuid.UUID) (map[uuid.UUID]*dbt.Expense, error) {
	if len(expenseIds) == 0 {
		return map[uuid.UUID]*dbt.Expense{}, nil
	}

	var expenseModels []ExpenseModel
	if result := pgdb.db.WithContext(ctx).Where("id IN ?", expenseIds).Find(&expenseModels); result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load expenses: %w", result.Error)
	}

	var memberModels []ExpenseMemberModel
	if result := pgdb.db.WithContext(ctx).Where("expense_id IN ?", expenseIds).Order("position").Find(&memberModels); result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load expense members: %w", result.Error)
	}
	membersByExpense := make(map[uuid.UUID][]ExpenseMemberModel)
	for _, mm := range memberModels {
		membersByExpense[mm.ExpenseID] = append(membersByExpense[mm.ExpenseID], mm)
	}

	var shareModels []ShareModel
	if result := pgdb.db.WithContext(ctx).Where("expense_id IN ?", expenseIds).Order("position").Find(&shareModels); result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load shares: %w", result.Error)
	}
	sharesByExpense := make(map[uuid.UUID][]ShareModel)
	for _, sm := range shareModels {
		sharesByExpense[sm.ExpenseID] = append(sharesByExpense[sm.ExpenseID], sm)
	}

	result := make(map[uuid.UUID]*dbt.Expense, len(expenseModels))
	for i := range expenseModels {
		em := &expenseModels[i]
		result[em.ID] = assembleExpense(em, membersByExpense[em.ID], sharesByExpense[em.ID])
	}
	return result, nil
}

// DataLoaderGetShareList batch-loads share lists by expense id.
func (pgdb *GORMExpenseDBWrapper) DataLoaderGetShareList(ctx context.Context, expenseIds []uuid.UUID) (map[uuid.UUID][]split.Share, error) {
	if len(expenseIds) == 0 {
		return map[uuid.UUID][]split.Share{}, nil
	}

	var shareModels []ShareModel
	if result := pgdb.db.WithContext(ctx).Where("expense_id IN ?", expenseIds).Order("position").Find(&shareModels); result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load shares: %w", result.Error)
	}

	result := make(map[uuid.UUID][]split.Share)
	for _, sm := range shareModels {
		result[sm.ExpenseID] = append(result[sm.ExpenseID], shareFromModel(sm))
	}
	return result, nil
}

func shareFromModel(sm ShareModel) split.Share {
	return split.Share{
		MemberID:      sm.MemberID,
		Name:          sm.Name,
		WalletAddress: sm.WalletAddress,
		Amount:        sm.Amount,
		Paid:          sm.Paid,
		TxHash:        sm.TxHash,
	}
}

func assembleExpense(em *ExpenseModel, memberModels []ExpenseMemberModel, shareModels []ShareModel) *dbt.Expense {
	expense := &dbt.Expense{
		ExpenseInfo: dbt.ExpenseInfo{
			ID:          em.ID,
			Title:       em.Title,
			TotalAmount: em.TotalAmount,
			SplitMode:   split.Mode(em.SplitMode),
			PayerID:     em.PayerID,
			Settled:     em.Settled,
			CreatedAt:   em.CreatedAt,
		},
	}
	for _, mm := range memberModels {
		expense.Members = append(expense.Members, split.Member{
			ID:            mm.MemberID,
			Name:          mm.Name,
			WalletAddress: mm.WalletAddress,
			Weight:        mm.Weight,
		})
	}
	for _, sm := range shareModels {
		expense.Shares = append(expense.Shares, shareFromModel(sm))
	}
	return expense
}
