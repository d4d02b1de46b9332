package farm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenses_Lifecycle(t *testing.T) {
	s, clk := newTestService(t, Options{})

	clk.now = 7_000
	e, err := s.CreateExpense(ExpensePayload{Description: "Seeds", Amount: 150, CropID: ptr[uint64](1)})
	require.NoError(t, err)
	assert.EqualValues(t, 7_000, e.Timestamp)
	require.NotNil(t, e.CropID)
	assert.EqualValues(t, 1, *e.CropID)

	got, err := s.GetExpense(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	clk.now = 9_000
	upd, err := s.UpdateExpense(e.ID, ExpenseUpdate{Amount: ptr(175.5)})
	require.NoError(t, err)
	assert.Equal(t, "Seeds", upd.Description)
	assert.Equal(t, 175.5, upd.Amount)
	assert.Equal(t, e.Timestamp, upd.Timestamp)
	assert.Equal(t, e.CropID, upd.CropID)

	_, err = s.DeleteExpense(e.ID)
	require.NoError(t, err)
	_, err = s.GetExpense(e.ID)
	assert.EqualError(t, err, "Expense with id=1 not found.")
	_, err = s.ListExpenses()
	assert.EqualError(t, err, "No expenses found.")
	_, err = s.UpdateExpense(e.ID, ExpenseUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenses_Budget(t *testing.T) {
	s, _ := newTestService(t, Options{})

	budget, err := s.CalculateBudget()
	require.NoError(t, err)
	assert.Equal(t, 0.0, budget)

	_, err = s.CreateExpense(ExpensePayload{Description: "Seeds", Amount: 150})
	require.NoError(t, err)
	_, err = s.CreateExpense(ExpensePayload{Description: "Refund", Amount: -20})
	require.NoError(t, err)
	_, err = s.CreateCrop(CropPayload{Name: "Wheat", Quantity: 100})
	require.NoError(t, err)
	_, err = s.CreateCrop(CropPayload{Name: "Corn", Quantity: 50})
	require.NoError(t, err)

	budget, err = s.CalculateBudget()
	require.NoError(t, err)
	assert.Equal(t, 20.0, budget)
}

func TestExpenses_PerCrop(t *testing.T) {
	s, _ := newTestService(t, Options{})

	for _, p := range []ExpensePayload{
		{Description: "a", Amount: 10, CropID: ptr[uint64](5)},
		{Description: "b", Amount: 2.5, CropID: ptr[uint64](5)},
		{Description: "c", Amount: 100, CropID: ptr[uint64](6)},
		{Description: "d", Amount: 1000},
	} {
		_, err := s.CreateExpense(p)
		require.NoError(t, err)
	}

	total, err := s.ExpensesPerCrop(5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, total)

	total, err = s.ExpensesPerCrop(42)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func nanos(year int, month time.Month, day, hour int) uint64 {
	return uint64(time.Date(year, month, day, hour, 0, 0, 0, time.UTC).UnixNano())
}

func TestExpenses_MonthlyReport(t *testing.T) {
	s, clk := newTestService(t, Options{})

	for _, x := range []struct {
		ts     uint64
		amount float64
	}{
		{nanos(2024, time.February, 29, 23), 1},
		{nanos(2024, time.March, 1, 0), 10},
		{nanos(2024, time.March, 31, 23), 20},
		{nanos(2024, time.April, 1, 0), 100},
		{nanos(2024, time.December, 31, 12), 1000},
	} {
		clk.now = x.ts
		_, err := s.CreateExpense(ExpensePayload{Description: "x", Amount: x.amount})
		require.NoError(t, err)
	}

	tests := []struct {
		month, year uint64
		want        float64
	}{
		{3, 2024, 30},
		{2, 2024, 1},
		{4, 2024, 100},
		{12, 2024, 1000},
		{1, 2025, 0},
	}
	for _, tt := range tests {
		got, err := s.MonthlyExpenseReport(tt.month, tt.year)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d/%d", tt.month, tt.year)
	}
}

func TestExpenses_MonthlyReportInvalid(t *testing.T) {
	s, _ := newTestService(t, Options{})

	for _, args := range [][2]uint64{{0, 2024}, {13, 2024}, {3, 1969}, {3, 2262}} {
		_, err := s.MonthlyExpenseReport(args[0], args[1])
		var iae *InvalidArgumentError
		assert.ErrorAs(t, err, &iae, "%v", args)
	}
}

func TestExpenses_MonthlyReportLegacyWindow(t *testing.T) {
	s, clk := newTestService(t, Options{LegacyMonthWindow: true})

	for _, x := range []struct {
		ts     uint64
		amount float64
	}{
		{20241131, 1},
		{20241201, 10},
		{20241231, 20},
		{20250101, 100},
	} {
		clk.now = x.ts
		_, err := s.CreateExpense(ExpensePayload{Description: "x", Amount: x.amount})
		require.NoError(t, err)
	}

	got, err := s.MonthlyExpenseReport(12, 2024)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)

	got, err = s.MonthlyExpenseReport(1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)

	_, err = s.MonthlyExpenseReport(13, 2024)
	var iae *InvalidArgumentError
	assert.ErrorAs(t, err, &iae)
}

func TestMonthWindows(t *testing.T) {
	w := calendarMonthWindow(12, 2261)
	assert.Equal(t, nanos(2261, time.December, 1, 0), w.start)
	assert.Equal(t, nanos(2262, time.January, 1, 0), w.end)

	lw := legacyMonthWindow(12, 2024)
	assert.Equal(t, monthWindow{start: 20241201, end: 20250101}, lw)
	assert.True(t, lw.contains(20241201))
	assert.False(t, lw.contains(20250101))
}
