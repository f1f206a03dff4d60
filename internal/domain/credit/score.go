package credit

import "time"

const (
	minScore = 300
	maxScore = 850

	paymentWindow = 365 * 24 * time.Hour
)

// CalculateScore derives the credit score from card and payment history. It
// reads nothing else, so the same history always yields the same score.
//
// Weights: payment history 40%, utilization 30%, credit age 20%, credit mix 10%.
func CalculateScore(cards []Card, payments []Payment, now time.Time) ScoreBreakdown {
	active := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.Status == CardStatusActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return ScoreBreakdown{TotalScore: minScore}
	}

	b := ScoreBreakdown{
		PaymentHistoryScore: paymentHistoryScore(payments, now),
		UtilizationScore:    utilizationScore(active),
		CreditAgeScore:      creditAgeScore(active, now),
		CreditMixScore:      creditMixScore(len(active)),
	}

	// Weighted average in hundredths to keep the rounding exact.
	weighted := 40*b.PaymentHistoryScore + 30*b.UtilizationScore + 20*b.CreditAgeScore + 10*b.CreditMixScore
	total := minScore + (550*weighted+5000)/10000
	b.TotalScore = clamp(total, minScore, maxScore)
	return b
}

func paymentHistoryScore(payments []Payment, now time.Time) int {
	since := now.Add(-paymentWindow)
	var total, onTime int
	for _, p := range payments {
		if p.PaymentDate.Before(since) || p.PaymentDate.After(now) {
			continue
		}
		total++
		if p.IsOnTime {
			onTime++
		}
	}
	if total == 0 {
		return 50
	}
	return (onTime*100 + total/2) / total
}

func utilizationScore(active []Card) int {
	var balance, limit int64
	for _, c := range active {
		balance += c.BalanceCents
		limit += c.LimitCents
	}
	if limit <= 0 {
		return 100
	}
	// Compare balance/limit against the bands without floats.
	switch pct := balance * 100; {
	case pct <= 30*limit:
		return 100
	case pct <= 50*limit:
		return 80
	case pct <= 70*limit:
		return 60
	case pct <= 90*limit:
		return 40
	default:
		return 20
	}
}

func creditAgeScore(active []Card, now time.Time) int {
	var days float64
	for _, c := range active {
		days += now.Sub(c.OpenedAt).Hours() / 24
	}
	avg := days / float64(len(active))
	switch {
	case avg >= 365:
		return 100
	case avg >= 180:
		return 80
	case avg >= 90:
		return 60
	case avg >= 30:
		return 40
	default:
		return 20
	}
}

func creditMixScore(activeCards int) int {
	switch {
	case activeCards >= 3:
		return 100
	case activeCards == 2:
		return 75
	case activeCards == 1:
		return 50
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
