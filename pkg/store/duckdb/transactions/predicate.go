package transactions

import (
	"strings"

	"github.com/granafy/reports/pkg/models/domain"
	"github.com/granafy/reports/pkg/models/store"
)

// predicate accumulates WHERE clauses and their arguments. Each query builds
// its own predicate explicitly from the filter set instead of inheriting a
// shared filter-application base, so which filters a report honors is visible
// at its call site.
type predicate struct {
	clauses []string
	args    []any
}

func (p *predicate) add(clause string, args ...any) *predicate {
	p.clauses = append(p.clauses, clause)
	p.args = append(p.args, args...)
	return p
}

func (p *predicate) in(column string, ids []string) *predicate {
	if len(ids) == 0 {
		return p
	}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		p.args = append(p.args, id)
	}
	p.clauses = append(p.clauses, column+" IN ("+strings.Join(placeholders, ", ")+")")
	return p
}

// where renders the accumulated clauses as a WHERE fragment.
func (p *predicate) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.clauses, "\n		  AND ")
}

// filterPredicate translates a filter set into clauses over the transactions
// table (alias t). Absent filter fields contribute no clause. The status
// filter is applied only when withStatus is set; queries that are hard-scoped
// to a status add their own clause instead.
func filterPredicate(userID string, kind store.EntryKind, f domain.ReportFilters, withStatus bool) *predicate {
	p := &predicate{}
	p.add("t.user_id = ?", userID)
	p.add("t.kind = ?", string(kind))

	if f.StartDate != nil {
		p.add("t.occurred_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		p.add("t.occurred_at <= ?", *f.EndDate)
	}
	p.in("t.category_id", f.CategoryIDs)
	p.in("t.wallet_id", f.WalletIDs)
	if withStatus && f.Status != "" && f.Status != domain.StatusAll {
		p.add("t.status = ?", string(f.Status))
	}
	if f.MinAmountCents != nil {
		p.add("t.amount_cents >= ?", *f.MinAmountCents)
	}
	if f.MaxAmountCents != nil {
		p.add("t.amount_cents <= ?", *f.MaxAmountCents)
	}
	return p
}
