package credit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var scoreNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func activeCard(limit, balance int64, openedDaysAgo int) Card {
	return Card{
		ID:           uuid.New(),
		Tier:         TierStarter,
		LimitCents:   limit,
		BalanceCents: balance,
		OpenedAt:     scoreNow.AddDate(0, 0, -openedDaysAgo),
		Status:       CardStatusActive,
	}
}

func payment(daysAgo int, onTime bool) Payment {
	return Payment{ID: uuid.New(), AmountCents: 100, PaymentDate: scoreNow.AddDate(0, 0, -daysAgo), IsOnTime: onTime}
}

func TestCalculateScoreWithoutActiveCards(t *testing.T) {
	assert.Equal(t, ScoreBreakdown{TotalScore: 300}, CalculateScore(nil, nil, scoreNow))

	pending := activeCard(20000, 0, 10)
	pending.Status = CardStatusPendingApproval
	frozen := activeCard(20000, 0, 400)
	frozen.Status = CardStatusFrozen
	got := CalculateScore([]Card{pending, frozen}, []Payment{payment(3, true)}, scoreNow)
	assert.Equal(t, ScoreBreakdown{TotalScore: 300}, got)
}

func TestCalculateScoreNewCard(t *testing.T) {
	got := CalculateScore([]Card{activeCard(20000, 0, 0)}, nil, scoreNow)

	assert.Equal(t, ScoreBreakdown{
		PaymentHistoryScore: 50,
		UtilizationScore:    100,
		CreditAgeScore:      20,
		CreditMixScore:      50,
		TotalScore:          625,
	}, got)
}

func TestCalculateScoreMatureHistory(t *testing.T) {
	payments := make([]Payment, 0, 12)
	for i := 0; i < 12; i++ {
		payments = append(payments, payment(i*30, true))
	}
	got := CalculateScore([]Card{activeCard(20000, 2000, 400)}, payments, scoreNow)

	assert.Equal(t, 100, got.PaymentHistoryScore)
	assert.Equal(t, 100, got.UtilizationScore)
	assert.Equal(t, 100, got.CreditAgeScore)
	assert.Equal(t, 50, got.CreditMixScore)
	assert.Equal(t, 823, got.TotalScore)
}

func TestCalculateScorePaymentWindow(t *testing.T) {
	cards := []Card{activeCard(20000, 0, 500)}

	old := CalculateScore(cards, []Payment{payment(400, false), payment(366, false)}, scoreNow)
	assert.Equal(t, 50, old.PaymentHistoryScore, "payments older than a year are ignored")

	mixed := CalculateScore(cards, []Payment{payment(10, true), payment(40, false), payment(70, true), payment(100, true)}, scoreNow)
	assert.Equal(t, 75, mixed.PaymentHistoryScore)
}

func TestUtilizationBands(t *testing.T) {
	tests := []struct {
		balance int64
		want    int
	}{
		{0, 100},
		{3000, 100},
		{3001, 80},
		{5000, 80},
		{7000, 60},
		{9000, 40},
		{9001, 20},
		{10000, 20},
	}
	for _, tt := range tests {
		got := CalculateScore([]Card{activeCard(10000, tt.balance, 30)}, nil, scoreNow)
		assert.Equal(t, tt.want, got.UtilizationScore, "balance %d of 10000", tt.balance)
	}

	zeroLimit := CalculateScore([]Card{activeCard(0, 0, 30)}, nil, scoreNow)
	assert.Equal(t, 100, zeroLimit.UtilizationScore)
}

func TestUtilizationImprovesScore(t *testing.T) {
	high := CalculateScore([]Card{activeCard(10000, 8000, 200)}, nil, scoreNow)
	low := CalculateScore([]Card{activeCard(10000, 2000, 200)}, nil, scoreNow)

	assert.Greater(t, low.UtilizationScore, high.UtilizationScore)
	assert.Greater(t, low.TotalScore, high.TotalScore)
}

func TestCreditAgeAndMix(t *testing.T) {
	ages := map[int]int{0: 20, 29: 20, 30: 40, 90: 60, 180: 80, 365: 100}
	for days, want := range ages {
		got := CalculateScore([]Card{activeCard(10000, 0, days)}, nil, scoreNow)
		assert.Equal(t, want, got.CreditAgeScore, "%d days", days)
	}

	two := CalculateScore([]Card{activeCard(10000, 0, 10), activeCard(10000, 0, 10)}, nil, scoreNow)
	assert.Equal(t, 75, two.CreditMixScore)

	three := CalculateScore([]Card{activeCard(10000, 0, 10), activeCard(10000, 0, 10), activeCard(10000, 0, 10)}, nil, scoreNow)
	assert.Equal(t, 100, three.CreditMixScore)
}

func TestCalculateScoreIsDeterministic(t *testing.T) {
	cards := []Card{activeCard(50000, 12345, 77), activeCard(20000, 19000, 5)}
	payments := []Payment{payment(1, true), payment(33, false), payment(64, true)}

	first := CalculateScore(cards, payments, scoreNow)
	second := CalculateScore(cards, payments, scoreNow)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.TotalScore, 300)
	assert.LessOrEqual(t, first.TotalScore, 850)
}
