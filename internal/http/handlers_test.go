package http

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"carteira/internal/core"
	"carteira/internal/ledger"
	"carteira/internal/ledger/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewServer(":0", "Carteira", store, 0, nil), store
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	entries := []ledger.Record{
		{UserID: 42, DisplayName: "joao", Kind: core.KindIncome, Amount: decimal.RequireFromString("1500.00"), Category: "salario", Note: "pagamento"},
		{UserID: 42, DisplayName: "joao", Kind: core.KindExpense, Amount: decimal.RequireFromString("50.00"), Category: "alimentacao", Note: "almoco"},
		{UserID: 7, DisplayName: "maria", Kind: core.KindExpense, Amount: decimal.RequireFromString("30.00"), Category: "transporte", Note: ""},
	}
	for _, rec := range entries {
		_, err := store.Append(context.Background(), rec)
		require.NoError(t, err)
	}
}

func TestDashboardPage(t *testing.T) {
	s, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "R$ 1500.00")
	require.Contains(t, body, "R$ 80.00")
	require.Contains(t, body, "R$ 1420.00")
	require.Contains(t, body, "joao")
	require.Contains(t, body, "maria")
	require.Contains(t, body, "alimentacao")
}

func TestDashboardEmptyState(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Nenhuma transação registrada")
}

func TestDashboardUnknownPath(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardFilterByKind(t *testing.T) {
	s, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?tipo=receita", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "1 transações")
	require.NotContains(t, body, "almoco")
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ready", rec.Body.String())
}

func TestDownloadCSV(t *testing.T) {
	s, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "transacoes_filtradas_")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, []string{"id", "user_id", "username", "tipo", "valor", "categoria", "descricao", "data_criacao"}, records[0])
}

func TestDownloadCSVHonorsFilters(t *testing.T) {
	s, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/csv?usuario=maria", nil))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "maria", records[1][2])
}

func TestDownloadXLSX(t *testing.T) {
	s, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	require.NotZero(t, rec.Body.Len())
	// xlsx files are zip archives
	require.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestRefreshRequiresPost(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRefreshInvalidatesSnapshot(t *testing.T) {
	store := memory.New()
	s := NewServer(":0", "Carteira", store, time.Hour, nil)

	// Prime the cache while the store is empty.
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, rec.Body.String(), "Nenhuma transação registrada")

	seed(t, store)

	// Still cached.
	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, rec.Body.String(), "Nenhuma transação registrada")

	s.InvalidateSnapshot()

	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, rec.Body.String(), "joao")
}

func TestPerUserChartsSplitByKind(t *testing.T) {
	s, _ := newTestServer(t)
	now := time.Now()

	view := s.buildView([]core.Transaction{
		{ID: 1, UserID: 42, DisplayName: "joao", Kind: core.KindIncome, Amount: decimal.RequireFromString("1000.00"), Category: "salario", CreatedAt: now},
		{ID: 2, UserID: 42, DisplayName: "joao", Kind: core.KindExpense, Amount: decimal.RequireFromString("400.00"), Category: "alimentacao", CreatedAt: now},
		{ID: 3, UserID: 7, DisplayName: "maria", Kind: core.KindExpense, Amount: decimal.RequireFromString("900.00"), Category: "transporte", CreatedAt: now},
	}, filters{Period: periodAll})

	// Expenses only, largest first. Income must not inflate joao's bar.
	require.Len(t, view.ExpenseByUser, 2)
	require.Equal(t, "maria", view.ExpenseByUser[0].Label)
	require.Equal(t, "R$ 900.00", view.ExpenseByUser[0].Amount)
	require.Equal(t, "joao", view.ExpenseByUser[1].Label)
	require.Equal(t, "R$ 400.00", view.ExpenseByUser[1].Amount)

	require.Len(t, view.BalanceByUser, 2)
	require.Equal(t, "joao", view.BalanceByUser[0].Label)
	require.Equal(t, "R$ 600.00", view.BalanceByUser[0].Amount)
	require.False(t, view.BalanceByUser[0].Negative)
	require.Equal(t, "maria", view.BalanceByUser[1].Label)
	require.Equal(t, "R$ -900.00", view.BalanceByUser[1].Amount)
	require.True(t, view.BalanceByUser[1].Negative)
}

func TestPerUserChartsNeedTwoUsers(t *testing.T) {
	s, _ := newTestServer(t)

	view := s.buildView([]core.Transaction{
		{ID: 1, UserID: 42, DisplayName: "joao", Kind: core.KindExpense, Amount: decimal.RequireFromString("10.00"), Category: "lazer", CreatedAt: time.Now()},
	}, filters{Period: periodAll})

	require.Empty(t, view.ExpenseByUser)
	require.Empty(t, view.BalanceByUser)
}

func TestDailyFlowSeries(t *testing.T) {
	s, _ := newTestServer(t)
	day1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 3, 2, 12, 0, 0, 0, time.Local)

	view := s.buildView([]core.Transaction{
		{ID: 1, UserID: 42, DisplayName: "joao", Kind: core.KindExpense, Amount: decimal.RequireFromString("200.00"), Category: "lazer", CreatedAt: day2},
		{ID: 2, UserID: 42, DisplayName: "joao", Kind: core.KindIncome, Amount: decimal.RequireFromString("100.00"), Category: "salario", CreatedAt: day1},
		{ID: 3, UserID: 42, DisplayName: "joao", Kind: core.KindExpense, Amount: decimal.RequireFromString("40.00"), Category: "alimentacao", CreatedAt: day1},
	}, filters{Period: periodAll})

	require.Len(t, view.DailyFlow, 2)

	first := view.DailyFlow[0]
	require.Equal(t, "01/03/2024", first.Date)
	require.Equal(t, "R$ 100.00", first.Income)
	require.Equal(t, 50, first.IncomeWidth)
	require.Equal(t, "R$ 40.00", first.Expense)
	require.Equal(t, 20, first.ExpenseWidth)

	second := view.DailyFlow[1]
	require.Equal(t, "02/03/2024", second.Date)
	require.Empty(t, second.Income)
	require.Zero(t, second.IncomeWidth)
	require.Equal(t, "R$ 200.00", second.Expense)
	require.Equal(t, 100, second.ExpenseWidth)
}

func TestDashboardRendersUserAndFlowCharts(t *testing.T) {
	s, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Gastos por usuário")
	require.Contains(t, body, "Saldo por usuário")
	require.Contains(t, body, "Fluxo de caixa diário")
}

func TestAggregatesSkipUnknownKind(t *testing.T) {
	s, _ := newTestServer(t)
	now := time.Now()

	view := s.buildView([]core.Transaction{
		{ID: 1, UserID: 42, DisplayName: "joao", Kind: core.KindIncome, Amount: decimal.RequireFromString("100.00"), Category: "salario", CreatedAt: now},
		{ID: 2, UserID: 42, DisplayName: "joao", Kind: core.KindExpense, Amount: decimal.RequireFromString("40.00"), Category: "lazer", CreatedAt: now},
		{ID: 3, UserID: 42, DisplayName: "joao", Kind: core.Kind("transferencia"), Amount: decimal.RequireFromString("999.00"), Category: "outros", CreatedAt: now},
	}, filters{Period: periodAll})

	// A row with a corrupted tipo stays out of every total.
	require.Equal(t, "R$ 100.00", view.TotalIncome)
	require.Equal(t, "R$ 40.00", view.TotalExpense)
	require.Equal(t, "R$ 60.00", view.Balance)
	require.Equal(t, "R$ 40.00", view.FilteredExpense)
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
