package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is a family member's role
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// User is a family member (matches users table)
type User struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	FamilyID           uuid.UUID `db:"family_id" json:"family_id"`
	Name               string    `db:"name" json:"name"`
	Role               Role      `db:"role" json:"role"`
	CurrentCreditScore *int      `db:"current_credit_score" json:"current_credit_score,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

func (u *User) IsChild() bool {
	return u.Role == RoleChild
}

// Actor is the already-verified caller identity supplied by the auth layer.
type Actor struct {
	UserID   uuid.UUID
	FamilyID uuid.UUID
	Role     Role
}

func (a Actor) IsParent() bool {
	return a.Role == RoleParent
}

// CanManage reports whether the actor is a parent of the given member's family.
func (a Actor) CanManage(member *User) bool {
	return a.IsParent() && member != nil && member.FamilyID == a.FamilyID
}
