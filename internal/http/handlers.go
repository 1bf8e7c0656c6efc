package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
	"carteira/internal/ledger/excel"
	"carteira/internal/service"
)

type barRow struct {
	Label    string
	Amount   string
	Width    int
	Negative bool
}

type flowRow struct {
	Date         string
	Income       string
	Expense      string
	IncomeWidth  int
	ExpenseWidth int
}

type tableRow struct {
	ID       int64
	Date     string
	User     string
	Kind     string
	Amount   string
	Category string
	Note     string
	IsIncome bool
}

type dashboardView struct {
	Title       string
	GeneratedAt string

	TotalIncome  string
	TotalExpense string
	Balance      string
	Negative     bool
	Count        int
	Users        int

	IncomeByCategory  []barRow
	ExpenseByCategory []barRow
	ExpenseByUser     []barRow
	BalanceByUser     []barRow
	DailyFlow         []flowRow

	Rows            []tableRow
	FilteredCount   int
	FilteredIncome  string
	FilteredExpense string

	Filters       filters
	Categories    []string
	UserNames     []string
	DownloadQuery string
	Empty         bool
}

// handleDashboard renders the single dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	rows, err := s.snapshot.Get(r.Context(), s.store.ReadAll)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "read ledger failed", "error", err)
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}

	view := s.buildView(rows, parseFilters(r.URL.Query()))
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		s.logger.ErrorContext(r.Context(), "dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) buildView(rows []core.Transaction, f filters) dashboardView {
	now := s.now()

	view := dashboardView{
		Title:         s.title,
		GeneratedAt:   now.Format("02/01/2006 15:04"),
		Filters:       f,
		DownloadQuery: f.query(),
		Empty:         len(rows) == 0,
	}

	income, expense := decimal.Zero, decimal.Zero
	users := map[string]bool{}
	categories := map[string]bool{}
	incomeByCat := map[string]decimal.Decimal{}
	expenseByCat := map[string]decimal.Decimal{}
	incomeByUser := map[string]decimal.Decimal{}
	expenseByUser := map[string]decimal.Decimal{}
	dayIncome := map[string]decimal.Decimal{}
	dayExpense := map[string]decimal.Decimal{}

	for _, tx := range rows {
		users[tx.DisplayName] = true
		categories[tx.Category] = true
		day := tx.CreatedAt.Local().Format("2006-01-02")
		switch tx.Kind {
		case core.KindIncome:
			income = income.Add(tx.Amount)
			incomeByCat[tx.Category] = incomeByCat[tx.Category].Add(tx.Amount)
			incomeByUser[tx.DisplayName] = incomeByUser[tx.DisplayName].Add(tx.Amount)
			dayIncome[day] = dayIncome[day].Add(tx.Amount)
		case core.KindExpense:
			expense = expense.Add(tx.Amount)
			expenseByCat[tx.Category] = expenseByCat[tx.Category].Add(tx.Amount)
			expenseByUser[tx.DisplayName] = expenseByUser[tx.DisplayName].Add(tx.Amount)
			dayExpense[day] = dayExpense[day].Add(tx.Amount)
		}
	}

	balance := income.Sub(expense)
	view.TotalIncome = core.FormatBRL(income)
	view.TotalExpense = core.FormatBRL(expense)
	view.Balance = core.FormatBRL(balance)
	view.Negative = balance.Sign() < 0
	view.Count = len(rows)
	view.Users = len(users)

	view.IncomeByCategory = scaledBars(incomeByCat)
	view.ExpenseByCategory = scaledBars(expenseByCat)
	if len(users) > 1 {
		view.ExpenseByUser = scaledBars(expenseByUser)
		view.BalanceByUser = balanceBars(incomeByUser, expenseByUser, users)
	}
	view.DailyFlow = dailyFlow(dayIncome, dayExpense)

	view.Categories = sortedKeys(categories)
	view.UserNames = sortedKeys(users)

	filtered := f.apply(rows, now)
	service.SortNewestFirst(filtered)

	fIncome, fExpense := decimal.Zero, decimal.Zero
	for _, tx := range filtered {
		switch tx.Kind {
		case core.KindIncome:
			fIncome = fIncome.Add(tx.Amount)
		case core.KindExpense:
			fExpense = fExpense.Add(tx.Amount)
		}
		view.Rows = append(view.Rows, tableRow{
			ID:       tx.ID,
			Date:     tx.CreatedAt.Local().Format("02/01/2006 15:04"),
			User:     tx.DisplayName,
			Kind:     string(tx.Kind),
			Amount:   core.FormatBRL(tx.Amount),
			Category: tx.Category,
			Note:     tx.Note,
			IsIncome: tx.Kind == core.KindIncome,
		})
	}
	view.FilteredCount = len(filtered)
	view.FilteredIncome = core.FormatBRL(fIncome)
	view.FilteredExpense = core.FormatBRL(fExpense)

	return view
}

// scaledBars turns per-label totals into rows with widths scaled against the
// largest value, rounded to a percent. Small non-zero values keep a sliver.
func scaledBars(totals map[string]decimal.Decimal) []barRow {
	if len(totals) == 0 {
		return nil
	}

	labels := make([]string, 0, len(totals))
	max := decimal.Zero
	for label, amount := range totals {
		labels = append(labels, label)
		if amount.GreaterThan(max) {
			max = amount
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		return totals[labels[i]].GreaterThan(totals[labels[j]])
	})

	bars := make([]barRow, 0, len(labels))
	for _, label := range labels {
		amount := totals[label]
		bars = append(bars, barRow{Label: label, Amount: core.FormatBRL(amount), Width: barWidth(amount, max)})
	}
	return bars
}

// barWidth maps an amount to a percent of the largest value. Small non-zero
// values keep a sliver.
func barWidth(amount, max decimal.Decimal) int {
	if max.Sign() <= 0 || amount.Sign() <= 0 {
		return 0
	}
	width := int(amount.Mul(decimal.New(100, 0)).Div(max).Round(0).IntPart())
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// balanceBars renders each user's income minus expense, widest first by
// absolute value so a deep deficit shows as large as a big surplus.
func balanceBars(incomeByUser, expenseByUser map[string]decimal.Decimal, users map[string]bool) []barRow {
	balances := make(map[string]decimal.Decimal, len(users))
	max := decimal.Zero
	for user := range users {
		b := incomeByUser[user].Sub(expenseByUser[user])
		balances[user] = b
		if b.Abs().GreaterThan(max) {
			max = b.Abs()
		}
	}

	labels := make([]string, 0, len(balances))
	for user := range balances {
		labels = append(labels, user)
	}
	sort.Slice(labels, func(i, j int) bool {
		bi, bj := balances[labels[i]], balances[labels[j]]
		if !bi.Equal(bj) {
			return bi.GreaterThan(bj)
		}
		return labels[i] < labels[j]
	})

	bars := make([]barRow, 0, len(labels))
	for _, label := range labels {
		b := balances[label]
		bars = append(bars, barRow{
			Label:    label,
			Amount:   core.FormatBRL(b),
			Width:    barWidth(b.Abs(), max),
			Negative: b.Sign() < 0,
		})
	}
	return bars
}

// dailyFlow builds the per-day income and expense series, oldest day first.
// A day only appears when at least one transaction landed on it.
func dailyFlow(dayIncome, dayExpense map[string]decimal.Decimal) []flowRow {
	days := map[string]bool{}
	max := decimal.Zero
	for day, amount := range dayIncome {
		days[day] = true
		if amount.GreaterThan(max) {
			max = amount
		}
	}
	for day, amount := range dayExpense {
		days[day] = true
		if amount.GreaterThan(max) {
			max = amount
		}
	}
	if len(days) == 0 {
		return nil
	}

	keys := sortedKeys(days)
	flow := make([]flowRow, 0, len(keys))
	for _, key := range keys {
		row := flowRow{}
		if day, err := time.Parse("2006-01-02", key); err == nil {
			row.Date = day.Format("02/01/2006")
		} else {
			row.Date = key
		}
		if amount, ok := dayIncome[key]; ok && amount.Sign() > 0 {
			row.Income = core.FormatBRL(amount)
			row.IncomeWidth = barWidth(amount, max)
		}
		if amount, ok := dayExpense[key]; ok && amount.Sign() > 0 {
			row.Expense = core.FormatBRL(amount)
			row.ExpenseWidth = barWidth(amount, max)
		}
		flow = append(flow, row)
	}
	return flow
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// handleDownloadCSV streams the filtered table as CSV, same columns as the
// backing sheet.
func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.snapshot.Get(r.Context(), s.store.ReadAll)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "read ledger failed", "error", err)
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}

	filtered := parseFilters(r.URL.Query()).apply(rows, s.now())
	service.SortNewestFirst(filtered)

	filename := fmt.Sprintf("transacoes_filtradas_%s.csv", s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "user_id", "username", "tipo", "valor", "categoria", "descricao", "data_criacao"})
	for _, tx := range filtered {
		_ = cw.Write([]string{
			strconv.FormatInt(tx.ID, 10),
			strconv.FormatInt(tx.UserID, 10),
			tx.DisplayName,
			string(tx.Kind),
			tx.Amount.String(),
			tx.Category,
			tx.Note,
			tx.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.ErrorContext(r.Context(), "write csv failed", "error", err)
	}
}

// handleDownloadXLSX sends the full ledger as a workbook.
func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := s.snapshot.Get(r.Context(), s.store.ReadAll)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "read ledger failed", "error", err)
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}

	data, err := excel.Workbook(excel.SheetName, rows)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "build workbook failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("transacoes_%s.xlsx", s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handleRefresh drops the snapshot cache and reloads the page.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.snapshot.Invalidate()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
