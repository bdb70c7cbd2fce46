// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentstation/inferdelta/internal/cmd/emoji"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/reconciler"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Title           string
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

var printer = message.NewPrinter(language.English)

// ReportToTableData converts a run report into table sections. The wide
// form adds per-sweep statistics and suppression details.
func ReportToTableData(report reconciler.Report, wide bool) []Data {
	sections := []Data{summaryTable(report), algorithmTable(report, wide)}
	if wide {
		sections = append(sections, sweepTable(report))
		if len(report.Suppressions) > 0 {
			sections = append(sections, suppressionTable(report))
		}
	}
	if len(report.Unresolved.Relationships) > 0 {
		sections = append(sections, unresolvedTable(report))
	}
	return sections
}

func summaryTable(report reconciler.Report) Data {
	rows := [][]string{
		{"Run", report.RunID},
		{"Effective time", report.EffectiveTime},
		{"Stated relationships", count(report.Relationships.Stated)},
		{"Inferred relationships", count(report.Relationships.Inferred)},
		{"Additional relationships", count(report.Relationships.Additional)},
		{"Orphans", count(report.Orphans)},
		{"Unresolved", count(report.Unresolved.Total)},
		{"Inactivated", count(report.Delta.Inactivated)},
		{"Activated", count(report.Delta.Activated)},
		{"Added", count(report.Delta.Added)},
		{"Suppressed", count(report.Delta.Suppressed)},
		{"Rows written", count(report.Delta.TotalRows)},
	}
	if report.DryRun {
		rows = append(rows, []string{"Dry run", emoji.Success})
	}
	return Data{
		Title:           "Summary",
		Headers:         []string{"Metric", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

func algorithmTable(report reconciler.Report, wide bool) Data {
	headers := []string{"Algorithm", "Certain", "Replacements"}
	if wide {
		headers = append(headers, "Accepted", "Rejected")
	}
	rows := make([][]string, 0, len(report.Matched))
	for _, m := range report.Matched {
		alg := graph.Algorithm(m.Algorithm)
		row := []string{algorithmName(alg), certainty(alg), count(m.Count)}
		if wide {
			row = append(row, count(report.Matching.Accepted[alg]), count(report.Matching.Rejected[alg]))
		}
		rows = append(rows, row)
	}
	align := []Align{AlignLeft, AlignCenter, AlignRight, AlignRight, AlignRight}
	return Data{
		Title:           "Replacements",
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: align[:len(headers)],
	}
}

func sweepTable(report reconciler.Report) Data {
	rows := make([][]string, 0, len(report.Matching.Sweeps))
	for _, s := range report.Matching.Sweeps {
		rows = append(rows, []string{
			strconv.Itoa(s.Number),
			count(s.Examined),
			count(s.Matched),
			count(s.Orphaned),
		})
	}
	return Data{
		Title:           "Sweeps",
		Headers:         []string{"Sweep", "Examined", "Matched", "Orphaned"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

func suppressionTable(report reconciler.Report) Data {
	rows := make([][]string, 0, len(report.Suppressions))
	for _, s := range report.Suppressions {
		rows = append(rows, []string{
			s.Relationship,
			reasons(s),
			flag(s.Inactivation),
			flag(s.Activation),
			orDash(s.Claimant),
		})
	}
	return Data{
		Title:           "Suppressed",
		Headers:         []string{"Relationship", "Reason", "Inactivation", "Activation", "Claimant"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter, AlignCenter, AlignLeft},
	}
}

func unresolvedTable(report reconciler.Report) Data {
	rows := make([][]string, 0, len(report.Unresolved.Relationships))
	for _, rel := range report.Unresolved.Relationships {
		rows = append(rows, []string{emoji.Error, rel})
	}
	t := Data{
		Title:   "Unresolved",
		Headers: []string{"", "Relationship"},
		Rows:    rows,
	}
	if more := report.Unresolved.Total - len(rows); more > 0 {
		t.Rows = append(t.Rows, []string{"", printer.Sprintf("... and %d more", more)})
	}
	return t
}

// RelationshipView is the serializable form of a relationship and its
// reconciliation state.
type RelationshipView struct {
	ID          string `json:"id" yaml:"id"`
	Source      int64  `json:"source" yaml:"source"`
	Type        int64  `json:"type" yaml:"type"`
	Destination int64  `json:"destination" yaml:"destination"`
	Group       int    `json:"group" yaml:"group"`
	State       string `json:"state" yaml:"state"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Algorithm   string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	ClaimedBy   string `json:"claimed_by,omitempty" yaml:"claimed_by,omitempty"`
}

// RelationshipViews converts relationships to their serializable form.
func RelationshipViews(rels []*graph.Relationship) []RelationshipView {
	views := make([]RelationshipView, 0, len(rels))
	for _, rel := range rels {
		v := RelationshipView{
			ID:          rel.ID(),
			Source:      rel.Source,
			Type:        rel.Type,
			Destination: rel.Destination,
			Group:       rel.Group,
			State:       rel.State().Name(),
		}
		if rep, alg := rel.Replacement(); rep != nil {
			v.Replacement = rep.String()
			v.Algorithm = alg.String()
		}
		if c := rel.ClaimedBy(); c != nil {
			v.ClaimedBy = c.String()
		}
		views = append(views, v)
	}
	return views
}

// RelationshipsToTableData converts relationships to a titled table.
func RelationshipsToTableData(heading string, rels []*graph.Relationship) Data {
	rows := make([][]string, 0, len(rels))
	for _, v := range RelationshipViews(rels) {
		rows = append(rows, []string{
			orDash(v.ID),
			strconv.FormatInt(v.Type, 10),
			strconv.FormatInt(v.Destination, 10),
			strconv.Itoa(v.Group),
			v.State,
			orDash(v.Replacement),
			algorithmName(graph.Algorithm(v.Algorithm)),
			orDash(v.ClaimedBy),
		})
	}
	return Data{
		Title:           heading,
		Headers:         []string{"ID", "Type", "Destination", "Group", "State", "Replacement", "Algorithm", "Claimed By"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}

func reasons(s reconciler.SuppressionReport) string {
	if len(s.Reasons) == 0 {
		return s.Reason
	}
	return strings.Join(s.Reasons, ", ")
}

func algorithmName(alg graph.Algorithm) string {
	if alg == "" {
		return emoji.Optional
	}
	return alg.Name()
}

func certainty(alg graph.Algorithm) string {
	if alg.Certain() {
		return emoji.Success
	}
	return emoji.Warning
}

func flag(b bool) string {
	if b {
		return emoji.Success
	}
	return emoji.Optional
}

func orDash(s string) string {
	if s == "" {
		return emoji.Optional
	}
	return s
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}
