package pg

import (
	"time"

	"github.com/google/uuid"
)

type ExpenseModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	TotalAmount string    `gorm:"size:32;not null"` // canonical 7-decimal string
	SplitMode   string    `gorm:"size:16;not null"`
	PayerID     uuid.UUID `gorm:"type:uuid;not null"`
	Settled     bool      `gorm:"not null;default:false"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ExpenseModel.
func (ExpenseModel) TableName() string {
	return "expenses"
}

type ExpenseMemberModel struct {
	ExpenseID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"size:255;not null"`
	WalletAddress string    `gorm:"size:56"`
	Weight        *int
	Position      int `gorm:"not null"` // preserves input order for split determinism
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ExpenseMemberModel) TableName() string {
	return "expense_members"
}

type ShareModel struct {
	ExpenseID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"size:255;not null"`
	WalletAddress string    `gorm:"size:56"`
	Amount        string    `gorm:"size:32;not null"`
	Paid          bool      `gorm:"not null;default:false"`
	TxHash        string    `gorm:"size:64"`
	Position      int       `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ShareModel) TableName() string {
	return "shares"
}

type TripInfoModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:255;not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for TripInfoModel.
func (TripInfoModel) TableName() string {
	return "trips"
}

type TripMemberModel struct {
	TripID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"size:255;not null"`
	WalletAddress string    `gorm:"size:56"`
	Weight        *int
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TripMemberModel) TableName() string {
	return "trip_members"
}

type TripExpenseLinkModel struct {
	TripID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExpenseID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TripExpenseLinkModel) TableName() string {
	return "trip_expense_links"
}
