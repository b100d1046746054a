package service

import (
	"strings"

	"github.com/finguard/treasury-api/internal/config"
	"github.com/shopspring/decimal"
)

// ApprovalPolicy decides whether a transaction needs approval and how many
// distinct approvers it takes. Built once at startup from configuration; the
// result is frozen onto the transaction when it enters PENDING_APPROVAL, so
// later policy changes never affect in-flight transactions.
type ApprovalPolicy struct {
	thresholds         map[string]config.ThresholdRule
	wildcard           *config.ThresholdRule
	highValueAmount    decimal.Decimal
	escalatedApprovals int
}

// NewApprovalPolicy creates a policy from the configured threshold rules
func NewApprovalPolicy(cfg *config.ApprovalConfig) *ApprovalPolicy {
	p := &ApprovalPolicy{
		thresholds:         make(map[string]config.ThresholdRule, len(cfg.Thresholds)),
		highValueAmount:    cfg.HighValueAmount,
		escalatedApprovals: cfg.EscalatedApprovals,
	}
	for _, rule := range cfg.Thresholds {
		if rule.Currency == "*" {
			wildcard := rule
			p.wildcard = &wildcard
			continue
		}
		p.thresholds[rule.Currency] = rule
	}
	return p
}

// Evaluate returns whether the amount requires approval in the given currency
// and, if so, the required approver count. The global high-value amount is
// currency-independent and only ever raises the count, never lowers it.
func (p *ApprovalPolicy) Evaluate(currency string, amount decimal.Decimal) (bool, int) {
	rule, ok := p.thresholds[strings.ToUpper(currency)]
	if !ok {
		if p.wildcard == nil {
			return false, 0
		}
		rule = *p.wildcard
	}

	requires := amount.GreaterThanOrEqual(rule.MinAmount)
	required := rule.RequiredApprovals

	if amount.GreaterThanOrEqual(p.highValueAmount) {
		requires = true
		if p.escalatedApprovals > required {
			required = p.escalatedApprovals
		}
	}

	if !requires {
		return false, 0
	}
	return true, required
}
