package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/champlabs/champ/internal/models"
	"github.com/champlabs/champ/internal/promote"
)

const (
	colMetric  = 18
	colValue   = 10
	colVersion = 9
	colStage   = 12
)

// printRunReport writes the outcome of a promotion run.
func printRunReport(w io.Writer, model string, res *promote.Result) {
	if res.Skipped {
		fmt.Fprintf(w, "Version %d of %s is already the champion; nothing to do.\n", //nolint:errcheck
			res.Candidate.Version, model)
		return
	}

	champLabel := "(none)"
	if res.Champion != nil {
		champLabel = fmt.Sprintf("v%d", res.Champion.Version)
	}
	fmt.Fprintf(w, "%s: candidate v%d vs champion %s\n\n", model, res.Candidate.Version, champLabel) //nolint:errcheck

	printComparisonTable(w, res.CandidateMetrics, res.ChampionMetrics)
	fmt.Fprintln(w) //nolint:errcheck

	switch res.Decision.Outcome {
	case models.OutcomePromote:
		fmt.Fprintf(w, "✅ Promoted v%d to champion\n", res.Candidate.Version) //nolint:errcheck
	case models.OutcomeReject:
		fmt.Fprintf(w, "❌ Rejected v%d: %s\n", res.Candidate.Version, res.Decision.ReasonString()) //nolint:errcheck
	}
}

// printComparisonTable shows candidate and champion metrics side by side.
func printComparisonTable(w io.Writer, candidate models.Metrics, champion *models.Metrics) {
	fmt.Fprintf(w, "%s  %s  %s\n", //nolint:errcheck
		padRight("Metric", colMetric), padRight("Candidate", colValue), "Champion")

	candFlat := candidate.Flat()
	names := make([]string, 0, len(candFlat))
	for name := range candFlat {
		names = append(names, name)
	}
	sort.Strings(names)

	var champFlat map[string]float64
	if champion != nil {
		champFlat = champion.Flat()
	}

	for _, name := range names {
		champCell := "—"
		if champFlat != nil {
			if v, ok := champFlat[name]; ok {
				champCell = fmt.Sprintf("%.4f", v)
			}
		}
		fmt.Fprintf(w, "%s  %s  %s\n", //nolint:errcheck
			padRight(name, colMetric),
			padRight(fmt.Sprintf("%.4f", candFlat[name]), colValue),
			champCell)
	}
}

// printMetricsTable shows one model's metrics.
func printMetricsTable(w io.Writer, label string, m models.Metrics) {
	fmt.Fprintf(w, "%s\n\n", label) //nolint:errcheck

	flat := m.Flat()
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "%s  %.4f\n", padRight(name, colMetric), flat[name]) //nolint:errcheck
	}
}

// printVersionsTable lists a model's versions, marking the champion.
func printVersionsTable(w io.Writer, model string, versions []models.ModelVersion, champion *models.ModelVersion) {
	if len(versions) == 0 {
		fmt.Fprintf(w, "%s has no registered versions.\n", model) //nolint:errcheck
		return
	}

	sorted := make([]models.ModelVersion, len(versions))
	copy(sorted, versions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	fmt.Fprintf(w, "%s  %s  %s\n", //nolint:errcheck
		padRight("Version", colVersion), padRight("Stage", colStage), "Tags")

	for _, v := range sorted {
		marker := " "
		if champion != nil && v.Version == champion.Version {
			marker = "*"
		}
		fmt.Fprintf(w, "%s  %s  %s\n", //nolint:errcheck
			padRight(fmt.Sprintf("%s v%d", marker, v.Version), colVersion),
			padRight(stageLabel(v.Stage), colStage),
			formatTags(v.Tags))
	}

	if champion != nil {
		fmt.Fprintf(w, "\n* champion\n") //nolint:errcheck
	}
}

func stageLabel(stage string) string {
	if stage == "" {
		return models.StageNone
	}
	return stage
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "—"
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, tags[k])
	}
	return strings.Join(parts, " ")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
