package notifier

import (
	"fmt"
	"html"
	"strings"

	"TrendRadar/internal/glossary"
	"TrendRadar/internal/model"
)

var regimeIcons = map[model.RegimeKind]string{
	model.Neutral:         "⚪",
	model.TrendingBullish: "🚀",
	model.Overheated:      "⚠️",
	model.OversoldBounce:  "🎣",
	model.WeakBearish:     "🥶",
}

// FormatDiagnosis formats a single-instrument verdict into a Telegram message.
func FormatDiagnosis(d *model.Diagnosis) string {
	var b strings.Builder
	snap := d.Snapshot

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(d.Symbol), d.AsOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Price: %.2f (%+.2f, %+.2f%%)\n", snap.Price, d.Change, d.ChangePct))
	b.WriteString(fmt.Sprintf("MA20: %.2f | Bias: %+.1f%%\n", snap.MA20, snap.Bias20))
	b.WriteString(fmt.Sprintf("Bollinger: %.2f ~ %.2f\n", snap.BBLower, snap.BBUpper))
	b.WriteString(fmt.Sprintf("J: %.1f ➔ %.1f ➔ %.1f\n", snap.JPrev2, snap.JPrev, snap.JCur))
	b.WriteString(fmt.Sprintf("Volume: %.1fx of 10-day average\n\n", d.Regime.VolumeRatio))

	b.WriteString(fmt.Sprintf("%s <b>%s</b>\n", regimeIcons[d.Regime.Kind], html.EscapeString(d.Regime.Label)))
	for _, s := range d.Regime.Supporting {
		b.WriteString("  ✅ " + html.EscapeString(s) + "\n")
	}
	for _, r := range d.Regime.Risks {
		b.WriteString("  ⚠️ " + html.EscapeString(r) + "\n")
	}
	return b.String()
}

// FormatScanReport formats a batch scan, listing opportunities first.
func FormatScanReport(r *model.ScanReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📡 <b>TrendRadar scan</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Scanned %d, classified %d, failed %d\n\n",
		r.Scanned, len(r.Results), len(r.Failures)))

	if len(r.Opportunities) == 0 {
		b.WriteString("No opportunities today.\n")
	} else {
		b.WriteString(fmt.Sprintf("🎯 <b>%d opportunities</b>\n", len(r.Opportunities)))
		for _, o := range r.Opportunities {
			b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f | %s\n",
				regimeIcons[o.Kind], html.EscapeString(o.Symbol), o.Price, html.EscapeString(o.Label)))
			b.WriteString(fmt.Sprintf("   ├─ Bias: %.1f%%\n", o.Bias20))
			b.WriteString(fmt.Sprintf("   ├─ J: %.1f ➔ %.1f\n", o.JPrev, o.JCur))
			b.WriteString(fmt.Sprintf("   └─ Volume: %.1fx\n", o.VolumeRatio))
		}
	}

	if len(r.Failures) > 0 {
		b.WriteString("\n<i>Skipped:</i>\n")
		for _, f := range r.Failures {
			b.WriteString(fmt.Sprintf("  %s (%s)\n", html.EscapeString(f.Symbol), f.Reason))
		}
	}
	return b.String()
}

// FormatGlossary formats glossary entries.
func FormatGlossary(entries []glossary.Entry) string {
	if len(entries) == 0 {
		return "No matching terms."
	}
	var b strings.Builder
	b.WriteString("📖 <b>Glossary</b>\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("\n📌 <b>%s</b>\n%s\n", html.EscapeString(e.Term), html.EscapeString(e.Definition)))
	}
	return b.String()
}
