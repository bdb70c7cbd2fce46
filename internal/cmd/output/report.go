package output

import (
	"io"

	"github.com/agentstation/inferdelta/internal/cmd/table"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/reconciler"
)

// FormatReport writes a run report in format.
func FormatReport(w io.Writer, report reconciler.Report, format Format) error {
	var data any = report
	if format.IsTable() {
		data = table.ReportToTableData(report, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatRelationships writes relationships with their reconciliation state.
func FormatRelationships(w io.Writer, title string, rels []*graph.Relationship, format Format) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.RelationshipsToTableData(title, rels))
	}
	return NewFormatter(format).Format(w, table.RelationshipViews(rels))
}
