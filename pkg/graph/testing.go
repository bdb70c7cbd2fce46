package graph

import (
	"strconv"
	"testing"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// TestRow builds an active row for tests.
func TestRow(id string, source, destination, typ int64, group int) rf2.Row {
	return rf2.Row{
		ID:                   id,
		EffectiveTime:        "20200131",
		Active:               constants.ActiveFlag,
		ModuleID:             "900000000000207008",
		SourceID:             strconv.FormatInt(source, 10),
		DestinationID:        strconv.FormatInt(destination, 10),
		RelationshipGroup:    strconv.Itoa(group),
		TypeID:               strconv.FormatInt(typ, 10),
		CharacteristicTypeID: constants.InferredCharacteristicType,
		ModifierID:           "900000000000451002",
	}
}

// TestIsA builds an is-a row for tests.
func TestIsA(id string, child, parent int64) rf2.Row {
	return TestRow(id, child, parent, constants.IsAType, 0)
}

// MustBuild builds a graph from rows and fails the test on error.
func MustBuild(t testing.TB, view View, rows ...rf2.Row) *Graph {
	t.Helper()
	g, err := FromRows(view, rows)
	if err != nil {
		t.Fatalf("build %s graph: %v", view, err)
	}
	return g
}
