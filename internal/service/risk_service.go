package service

import (
	"time"

	"campus-payment-ledger/config"
	"campus-payment-ledger/internal/core/domain"
)

// RuleRiskScorer implements ports.RiskScorer with additive fixed-weight rules.
// Rules are independently triggerable; the total is clamped to 100.
type RuleRiskScorer struct {
	cfg config.RiskConfig
}

// NewRuleRiskScorer creates a scorer with the configured rule parameters.
func NewRuleRiskScorer(cfg config.RiskConfig) *RuleRiskScorer {
	return &RuleRiskScorer{cfg: cfg}
}

// BurstWindow is the trailing window whose transaction count feeds Score.
func (s *RuleRiskScorer) BurstWindow() time.Duration {
	return s.cfg.BurstWindow
}

// Score computes the fraud score and flag set for a prospective payment.
// recentCount is the number of the student's prior ledger entries inside the
// burst window ending at now.
func (s *RuleRiskScorer) Score(recentCount int, amount int64, accountCreatedAt time.Time, now time.Time) (int, []string) {
	score := 0
	flags := []string{}

	if amount > s.cfg.HighAmountThreshold {
		score += s.cfg.HighAmountScore
		flags = append(flags, domain.RiskFlagHighAmount)
	}

	if recentCount >= s.cfg.BurstCount {
		score += s.cfg.BurstScore
		flags = append(flags, domain.RiskFlagBurstActivity)
	}

	if now.Sub(accountCreatedAt) < s.cfg.NewAccountMaxAge && amount > s.cfg.NewAccountThreshold {
		score += s.cfg.NewAccountScore
		flags = append(flags, domain.RiskFlagNewAccountHighAmount)
	}

	if score > 100 {
		score = 100
	}
	return score, flags
}

// Classify maps a score to the review status recorded at settlement.
// Fraud is never assigned automatically.
func (s *RuleRiskScorer) Classify(score int) domain.ReviewStatus {
	if score >= s.cfg.SuspiciousScore {
		return domain.ReviewStatusSuspicious
	}
	return domain.ReviewStatusClean
}
