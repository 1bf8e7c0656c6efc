package http

import (
	"net/url"
	"time"

	"carteira/internal/core"
)

// Period filter values accepted in the querystring. Anything else is treated
// as "all".
const (
	periodWeek    = "7"
	periodMonth   = "30"
	periodQuarter = "90"
	periodAll     = "all"
)

// filters narrows the transaction table. Zero values mean "no restriction".
type filters struct {
	Period   string
	Kind     string
	Category string
	User     string
}

func parseFilters(q url.Values) filters {
	f := filters{
		Period:   q.Get("periodo"),
		Kind:     q.Get("tipo"),
		Category: q.Get("categoria"),
		User:     q.Get("usuario"),
	}
	switch f.Period {
	case periodWeek, periodMonth, periodQuarter:
	default:
		f.Period = periodAll
	}
	if f.Kind != string(core.KindIncome) && f.Kind != string(core.KindExpense) {
		f.Kind = ""
	}
	return f
}

func (f filters) periodDays() int {
	switch f.Period {
	case periodWeek:
		return 7
	case periodMonth:
		return 30
	case periodQuarter:
		return 90
	default:
		return 0
	}
}

// apply returns the rows matching every active filter. The cutoff is
// computed against now so the period window is stable within one request.
func (f filters) apply(rows []core.Transaction, now time.Time) []core.Transaction {
	var cutoff time.Time
	if days := f.periodDays(); days > 0 {
		cutoff = now.AddDate(0, 0, -days)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, tx := range rows {
		if !cutoff.IsZero() && tx.CreatedAt.Before(cutoff) {
			continue
		}
		if f.Kind != "" && string(tx.Kind) != f.Kind {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if f.User != "" && tx.DisplayName != f.User {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// query re-encodes the filter state, used to propagate it into download links.
func (f filters) query() string {
	q := url.Values{}
	if f.Period != periodAll {
		q.Set("periodo", f.Period)
	}
	if f.Kind != "" {
		q.Set("tipo", f.Kind)
	}
	if f.Category != "" {
		q.Set("categoria", f.Category)
	}
	if f.User != "" {
		q.Set("usuario", f.User)
	}
	return q.Encode()
}
