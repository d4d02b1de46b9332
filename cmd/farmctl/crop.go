package main

import (
	"fmt"
	"io"

	"github.com/smartfarm/farmstore/farm"
	"github.com/spf13/cobra"
)

func newCropCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crop",
		Short: "Manage crops",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all crops",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				crops, err := a.svc.ListCrops()
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), crops, func(w io.Writer) { printCrops(w, crops) })
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one crop",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				crop, err := a.svc.GetCrop(id)
				if err != nil {
					return err
				}
				return a.printCrop(cmd, crop)
			},
		},
		newCropCreateCmd(a),
		newCropUpdateCmd(a),
		&cobra.Command{
			Use:   "report <id>",
			Short: "Print a human-readable crop report",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				report, err := a.svc.CropReport(id)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), map[string]string{"report": report}, func(w io.Writer) {
					fmt.Fprintln(w, report)
				})
			},
		},
		newCropSearchCmd(a),
		&cobra.Command{
			Use:   "yield <id>",
			Short: "Estimate the yield of a crop",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				y, err := a.svc.PredictedYield(id)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), map[string]uint64{"predicted_yield": y}, func(w io.Writer) {
					fmt.Fprintln(w, y)
				})
			},
		},
	)
	return cmd
}

func (a *app) printCrop(cmd *cobra.Command, crop *farm.Crop) error {
	return a.print(cmd.OutOrStdout(), crop, func(w io.Writer) { printCrops(w, []*farm.Crop{crop}) })
}

func newCropCreateCmd(a *app) *cobra.Command {
	var p farm.CropPayload
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a crop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			crop, err := a.svc.CreateCrop(p)
			if err != nil {
				return err
			}
			return a.printCrop(cmd, crop)
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "crop name")
	cmd.Flags().StringVar(&p.Description, "description", "", "crop description")
	cmd.Flags().Uint32Var(&p.Quantity, "quantity", 0, "quantity planted")
	must(cmd.MarkFlagRequired("name"))
	return cmd
}

func newCropUpdateCmd(a *app) *cobra.Command {
	var (
		name, description string
		quantity          uint32
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a crop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var u farm.CropUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("quantity") {
				u.Quantity = &quantity
			}
			crop, err := a.svc.UpdateCrop(id, u)
			if err != nil {
				return err
			}
			return a.printCrop(cmd, crop)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Uint32Var(&quantity, "quantity", 0, "new quantity")
	return cmd
}

func newCropSearchCmd(a *app) *cobra.Command {
	var (
		minQuantity uint32
		from, to    uint64
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find crops by name, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := farm.CropQuery{Query: args[0]}
			flags := cmd.Flags()
			if flags.Changed("min-quantity") {
				q.MinQuantity = &minQuantity
			}
			switch fromSet, toSet := flags.Changed("created-from"), flags.Changed("created-to"); {
			case fromSet && toSet:
				q.Created = &farm.TimeRange{Start: from, End: to}
			case fromSet || toSet:
				return usageErrorf("--created-from and --created-to must be given together")
			}
			crops, err := a.svc.SearchCrops(q)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), crops, func(w io.Writer) { printCrops(w, crops) })
		},
	}
	cmd.Flags().Uint32Var(&minQuantity, "min-quantity", 0, "only crops with at least this quantity")
	cmd.Flags().Uint64Var(&from, "created-from", 0, "creation time lower bound, ns since epoch (inclusive)")
	cmd.Flags().Uint64Var(&to, "created-to", 0, "creation time upper bound, ns since epoch (inclusive)")
	return cmd
}
