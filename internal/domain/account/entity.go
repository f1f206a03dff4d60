package account

import (
	"time"

	"github.com/google/uuid"
)

// Type is the accounting class of a ledger account
type Type string

const (
	TypeAsset   Type = "ASSET"
	TypeRevenue Type = "REVENUE"
)

// Standard account names. Each user owns at most one account per (name, type).
const (
	NameWallet          = "Wallet"
	NameChoresIncome    = "Chores Income"
	NameAllowanceIncome = "Allowance Income"
)

// Account is a named ledger account owned by a user. Accounts are never deleted.
type Account struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerUserID uuid.UUID `db:"owner_user_id" json:"owner_user_id"`
	Name        string    `db:"name" json:"name"`
	Type        Type      `db:"type" json:"type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
