package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/smartfarm/farmstore/farm"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var outputFormats = []string{outputText, outputJSON, outputYAML}

func validOutput(s string) bool {
	return slices.Contains(outputFormats, s)
}

// print writes v in the configured format. text renders the human-readable
// form; it is only called for the text format.
func (a *app) print(w io.Writer, v any, text func(w io.Writer)) error {
	switch a.cfg.Output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func printCrops(w io.Writer, crops []*farm.Crop) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tDESCRIPTION")
	for _, c := range crops {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", c.ID, c.Name, c.Quantity, c.Description)
	}
	tw.Flush()
}

func printTasks(w io.Writer, tasks []*farm.Task) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCROP\tDONE\tDESCRIPTION")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", t.ID, t.Name, t.CropID, yesNo(t.Completed), t.Description)
	}
	tw.Flush()
}

func printExpenses(w io.Writer, expenses []*farm.Expense) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAMOUNT\tCROP\tTIMESTAMP\tDESCRIPTION")
	for _, e := range expenses {
		crop := "-"
		if e.CropID != nil {
			crop = strconv.FormatUint(*e.CropID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", e.ID, formatAmount(e.Amount), crop, e.Timestamp, e.Description)
	}
	tw.Flush()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
