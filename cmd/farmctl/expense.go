package main

import (
	"fmt"
	"io"

	"github.com/smartfarm/farmstore/farm"
	"github.com/spf13/cobra"
)

func newExpenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage expenses",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all expenses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				expenses, err := a.svc.ListExpenses()
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), expenses, func(w io.Writer) { printExpenses(w, expenses) })
			},
		},
		expenseByIDCmd(a, "get <id>", "Show one expense", (*farm.Service).GetExpense),
		newExpenseCreateCmd(a),
		newExpenseUpdateCmd(a),
		expenseByIDCmd(a, "delete <id>", "Delete an expense", (*farm.Service).DeleteExpense),
		&cobra.Command{
			Use:   "per-crop <crop-id>",
			Short: "Sum the expenses recorded against a crop",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cropID, err := parseCropRef(args[0])
				if err != nil {
					return err
				}
				total, err := a.svc.ExpensesPerCrop(cropID)
				if err != nil {
					return err
				}
				return a.printAmount(cmd, "total", total)
			},
		},
		newMonthlyCmd(a),
	)
	return cmd
}

func expenseByIDCmd(a *app, use, short string, op func(*farm.Service, uint64) (*farm.Expense, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := op(a.svc, id)
			if err != nil {
				return err
			}
			return a.printExpense(cmd, e)
		},
	}
}

func (a *app) printExpense(cmd *cobra.Command, e *farm.Expense) error {
	return a.print(cmd.OutOrStdout(), e, func(w io.Writer) { printExpenses(w, []*farm.Expense{e}) })
}

func (a *app) printAmount(cmd *cobra.Command, key string, v float64) error {
	return a.print(cmd.OutOrStdout(), map[string]float64{key: v}, func(w io.Writer) {
		fmt.Fprintln(w, formatAmount(v))
	})
}

func newExpenseCreateCmd(a *app) *cobra.Command {
	var (
		p      farm.ExpensePayload
		cropID uint64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("crop") {
				p.CropID = &cropID
			}
			e, err := a.svc.CreateExpense(p)
			if err != nil {
				return err
			}
			return a.printExpense(cmd, e)
		},
	}
	cmd.Flags().StringVar(&p.Description, "description", "", "what the money was spent on")
	cmd.Flags().Float64Var(&p.Amount, "amount", 0, "amount spent; negative for refunds")
	cmd.Flags().Uint64Var(&cropID, "crop", 0, "id of the crop the expense is for")
	must(cmd.MarkFlagRequired("amount"))
	return cmd
}

func newExpenseUpdateCmd(a *app) *cobra.Command {
	var (
		description string
		amount      float64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the description or amount of an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var u farm.ExpenseUpdate
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			if cmd.Flags().Changed("amount") {
				u.Amount = &amount
			}
			e, err := a.svc.UpdateExpense(id, u)
			if err != nil {
				return err
			}
			return a.printExpense(cmd, e)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Float64Var(&amount, "amount", 0, "new amount")
	return cmd
}

func newMonthlyCmd(a *app) *cobra.Command {
	var month, year uint64
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Sum the expenses of one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := a.svc.MonthlyExpenseReport(month, year)
			if err != nil {
				return err
			}
			return a.printAmount(cmd, "total", total)
		},
	}
	cmd.Flags().Uint64Var(&month, "month", 0, "month, 1..12")
	cmd.Flags().Uint64Var(&year, "year", 0, "year")
	must(cmd.MarkFlagRequired("month"))
	must(cmd.MarkFlagRequired("year"))
	return cmd
}
