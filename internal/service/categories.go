package service

import (
	"strings"

	"carteira/internal/core"
)

// Categories enforces the configured allow-lists, one per kind. The lists are
// loaded once at startup and read-only afterwards.
type Categories struct {
	income  []string
	expense []string
}

func NewCategories(income, expense []string) *Categories {
	return &Categories{
		income:  append([]string(nil), income...),
		expense: append([]string(nil), expense...),
	}
}

// Validate checks category against the allow-list of the given kind,
// case-insensitively. The returned error carries the full allow-list so the
// caller can show the user what would have been accepted.
func (c *Categories) Validate(kind core.Kind, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.ErrEmptyCategory
	}
	for _, allowed := range c.list(kind) {
		if strings.EqualFold(allowed, category) {
			return nil
		}
	}
	return &core.InvalidCategoryError{
		Kind:     kind,
		Category: category,
		Allowed:  c.List(kind),
	}
}

// List returns a copy of the allow-list for a kind.
func (c *Categories) List(kind core.Kind) []string {
	return append([]string(nil), c.list(kind)...)
}

func (c *Categories) list(kind core.Kind) []string {
	if kind == core.KindIncome {
		return c.income
	}
	return c.expense
}
