package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/smartfarm/farmstore"
	"github.com/spf13/cobra"
)

func newBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Difference between total expenses and total crop quantity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			budget, err := a.svc.CalculateBudget()
			if err != nil {
				return err
			}
			return a.printAmount(cmd, "budget", budget)
		},
	}
}

func newRotationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rotation <crop-name>",
		Short: "Recommend what to plant after a crop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := a.svc.CropRotationRecommendations(args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), next, func(w io.Writer) {
				fmt.Fprintln(w, strings.Join(next, "\n"))
			})
		},
	}
}

type checkResult struct {
	OK       bool     `json:"ok" yaml:"ok"`
	Problems []string `json:"problems" yaml:"problems"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Decode every stored record and report corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, err := a.svc.Check()
			if err != nil {
				return err
			}
			res := checkResult{OK: len(problems) == 0, Problems: []string{}}
			for _, p := range problems {
				res.Problems = append(res.Problems, p.Error())
			}
			err = a.print(cmd.OutOrStdout(), res, func(w io.Writer) {
				if res.OK {
					fmt.Fprintln(w, "ok")
				}
				for _, p := range res.Problems {
					fmt.Fprintln(w, p)
				}
			})
			if err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("%d corrupted records", len(problems))
			}
			return nil
		},
	}
}

func newDumpCmd(a *app) *cobra.Command {
	var raw, stats bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the raw contents of every region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := farmstore.DumpRegionHeaders | farmstore.DumpRows
			if raw {
				flags |= farmstore.DumpRaw
			}
			if stats {
				flags |= farmstore.DumpStats
			}
			var out string
			err := a.svc.DB().View(func(tx *farmstore.Tx) error {
				out = tx.Dump(flags)
				return nil
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err = io.WriteString(w, out); err != nil {
				return err
			}
			if stats {
				st := a.svc.DB().Stats()
				_, err = fmt.Fprintf(w, "space: %d bytes, %d reads, %d writes\n", st.Size, st.Reads, st.Writes)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "include the hex encoding of each record")
	cmd.Flags().BoolVar(&stats, "stats", false, "include per-region statistics")
	return cmd
}
