package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"TrendRadar/internal/glossary"
	"TrendRadar/internal/model"
)

// useJSON resolves the output flag; auto means JSON unless stdout is a terminal.
func useJSON(output string) (bool, error) {
	switch output {
	case "json":
		return true, nil
	case "text":
		return false, nil
	case "auto", "":
		return !term.IsTerminal(int(os.Stdout.Fd())), nil
	default:
		return false, fmt.Errorf("unknown output format %q", output)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderDiagnosis(w io.Writer, d *model.Diagnosis) {
	s := d.Snapshot
	fmt.Fprintf(w, "[%s] %s  price %.2f (%+.2f%%)  bias %.1f%%\n",
		d.Symbol, d.AsOf.Format("2006-01-02"), s.Price, d.ChangePct, s.Bias20)
	fmt.Fprintf(w, "  regime: %s\n", d.Regime.Label)
	for _, e := range d.Regime.Supporting {
		fmt.Fprintf(w, "  + %s\n", e)
	}
	for _, e := range d.Regime.Risks {
		fmt.Fprintf(w, "  ! %s\n", e)
	}
	fmt.Fprintf(w, "  J: %.1f -> %.1f -> %.1f | BB %.2f ~ %.2f | volume %.1fx\n",
		s.JPrev2, s.JPrev, s.JCur, s.BBLower, s.BBUpper, d.Regime.VolumeRatio)
}

func renderScanReport(w io.Writer, r *model.ScanReport, all bool) error {
	rows := r.Opportunities
	title := "opportunities"
	if all {
		rows = r.Results
		title = "results"
	}
	fmt.Fprintf(w, "Scanned %d instruments in %s: %d classified, %d %s, %d failed\n\n",
		r.Scanned, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), len(r.Results), len(rows), title, len(r.Failures))

	if len(rows) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMBOL\tPRICE\tREGIME\tBIAS20\tJ\tVOLUME")
		for _, o := range rows {
			fmt.Fprintf(tw, "%s\t%.2f\t%s\t%.1f%%\t%.1f -> %.1f\t%.1fx\n",
				o.Symbol, o.Price, o.Kind, o.Bias20, o.JPrev, o.JCur, o.VolumeRatio)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(r.Failures) > 0 {
		parts := make([]string, 0, len(r.Failures))
		for _, f := range r.Failures {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Symbol, f.Reason))
		}
		fmt.Fprintf(w, "\nskipped: %s\n", strings.Join(parts, ", "))
	}
	return nil
}

func renderGlossary(w io.Writer, entries []glossary.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching terms.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\n    %s\n", e.Term, e.Definition)
	}
}
