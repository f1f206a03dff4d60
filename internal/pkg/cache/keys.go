package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TTLs per cached view. Chore and request lists are near-real-time; roster and
// wallet views tolerate more staleness.
type TTLs struct {
	Chores           time.Duration
	Requests         time.Duration
	Wallet           time.Duration
	Members          time.Duration
	CardApplications time.Duration
}

func (t TTLs) withDefaults() TTLs {
	if t.Chores <= 0 {
		t.Chores = time.Second
	}
	if t.Requests <= 0 {
		t.Requests = time.Second
	}
	if t.Wallet <= 0 {
		t.Wallet = 30 * time.Second
	}
	if t.Members <= 0 {
		t.Members = 30 * time.Second
	}
	if t.CardApplications <= 0 {
		t.CardApplications = 10 * time.Second
	}
	return t
}

func UserChoresKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:chores", userID)
}

func UserWalletKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:wallet", userID)
}

func UserCardsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:cards", userID)
}

func FamilyMembersKey(familyID uuid.UUID) string {
	return fmt.Sprintf("family:%s:members", familyID)
}

func FamilyRequestsKey(familyID uuid.UUID) string {
	return fmt.Sprintf("family:%s:requests", familyID)
}

func FamilyCardApplicationsKey(familyID uuid.UUID) string {
	return fmt.Sprintf("family:%s:cardApplications", familyID)
}

func FamilyChoresKey(familyID uuid.UUID) string {
	return fmt.Sprintf("family:%s:chores", familyID)
}

// UserPattern matches every cached view of one user.
func UserPattern(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:*", userID)
}
