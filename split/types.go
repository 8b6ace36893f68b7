package split

import "github.com/google/uuid"

// Mode selects how an expense total is divided among members.
type Mode string

const (
	ModeEqual  Mode = "equal"
	ModeCustom Mode = "custom"
)

// Member is one person on an expense. WalletAddress may be empty: a member
// can be added before their payment address is known. Weight only matters
// for ModeCustom; nil means "unset" and defaults to 1. An explicit zero
// weight is kept as zero and yields a zero share.
type Member struct {
	ID            uuid.UUID
	Name          string
	WalletAddress string
	Weight        *int
}

// Share is one non-payer member's obligation on an expense. Amount is a
// canonical 7-decimal string. TxHash is set once the share is paid.
type Share struct {
	MemberID      uuid.UUID
	Name          string
	WalletAddress string
	Amount        string
	Paid          bool
	TxHash        string
}

// Strategy converts an expense total into per-member shares. The payer
// never receives a share; their portion is implicitly self-paid.
type Strategy func(total float64, members []Member, payerID uuid.UUID) []Share
