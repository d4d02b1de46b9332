package farm

import (
	"math"

	"github.com/smartfarm/farmstore"
)

func (s *Service) ListExpenses() ([]*Expense, error) {
	return list(s, s.scm.Expenses, "expenses")
}

func (s *Service) GetExpense(id uint64) (*Expense, error) {
	return get(s, s.scm.Expenses, "Expense", id)
}

func (s *Service) CreateExpense(p ExpensePayload) (*Expense, error) {
	expense, err := create(s, s.scm.Expenses, func(id, now uint64) *Expense {
		e := &Expense{
			ID:          id,
			Description: p.Description,
			Amount:      p.Amount,
			Timestamp:   now,
		}
		if p.CropID != nil {
			cropID := *p.CropID
			e.CropID = &cropID
		}
		return e
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("expense created", "id", expense.ID, "amount", expense.Amount)
	return expense, nil
}

func (s *Service) UpdateExpense(id uint64, u ExpenseUpdate) (*Expense, error) {
	return modify(s, s.scm.Expenses, "Expense", id, func(e *Expense) {
		if u.Description != nil {
			e.Description = *u.Description
		}
		if u.Amount != nil {
			e.Amount = *u.Amount
		}
	})
}

func (s *Service) DeleteExpense(id uint64) (*Expense, error) {
	return remove(s, s.scm.Expenses, "Expense", id)
}

// ExpensesPerCrop sums the amounts of expenses that reference cropID.
// Expenses without a crop reference never match.
func (s *Service) ExpensesPerCrop(cropID uint64) (float64, error) {
	return s.sumExpenses(func(e *Expense) bool {
		return e.CropID != nil && *e.CropID == cropID
	})
}

// MonthlyExpenseReport sums the amounts of expenses whose timestamp falls
// within the given month.
func (s *Service) MonthlyExpenseReport(month, year uint64) (float64, error) {
	w, err := s.monthWindow(month, year)
	if err != nil {
		return 0, err
	}
	return s.sumExpenses(func(e *Expense) bool {
		return w.contains(e.Timestamp)
	})
}

func (s *Service) sumExpenses(match func(e *Expense) bool) (float64, error) {
	var total float64
	err := s.view(func(tx *farmstore.Tx) error {
		for _, e := range s.scm.Expenses.All(tx) {
			if match(e) {
				total += e.Amount
			}
		}
		return nil
	})
	return total, err
}

// CalculateBudget returns |sum of expense amounts − sum of crop quantities|.
//
// The two sums are in different units (money and crop count); the formula is
// kept as-is for compatibility with existing callers.
func (s *Service) CalculateBudget() (float64, error) {
	var totalExpenses, totalCropValue float64
	err := s.view(func(tx *farmstore.Tx) error {
		for _, e := range s.scm.Expenses.All(tx) {
			totalExpenses += e.Amount
		}
		for _, c := range s.scm.Crops.All(tx) {
			totalCropValue += float64(c.Quantity)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return math.Abs(totalExpenses - totalCropValue), nil
}
