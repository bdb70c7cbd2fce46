// Package rf2 reads and writes tab-delimited relationship release files.
//
// A release file is a header row followed by rows with exactly the columns
// listed in Header. Files are read with LF or CRLF line endings and always
// written with CRLF.
package rf2

import (
	"fmt"
	"strings"

	"github.com/agentstation/inferdelta/pkg/constants"
)

// Header lists the relationship file columns in file order.
var Header = []string{
	"id",
	"effectiveTime",
	"active",
	"moduleId",
	"sourceId",
	"destinationId",
	"relationshipGroup",
	"typeId",
	"characteristicTypeId",
	"modifierId",
}

// Row is one relationship row with its raw field values.
type Row struct {
	ID                   string `json:"id" yaml:"id"`
	EffectiveTime        string `json:"effective_time" yaml:"effective_time"`
	Active               string `json:"active" yaml:"active"`
	ModuleID             string `json:"module_id" yaml:"module_id"`
	SourceID             string `json:"source_id" yaml:"source_id"`
	DestinationID        string `json:"destination_id" yaml:"destination_id"`
	RelationshipGroup    string `json:"relationship_group" yaml:"relationship_group"`
	TypeID               string `json:"type_id" yaml:"type_id"`
	CharacteristicTypeID string `json:"characteristic_type_id" yaml:"characteristic_type_id"`
	ModifierID           string `json:"modifier_id" yaml:"modifier_id"`
}

// NewRow builds a row from a record in Header order.
func NewRow(record []string) (Row, error) {
	if len(record) != len(Header) {
		return Row{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(record))
	}
	return Row{
		ID:                   record[0],
		EffectiveTime:        record[1],
		Active:               record[2],
		ModuleID:             record[3],
		SourceID:             record[4],
		DestinationID:        record[5],
		RelationshipGroup:    record[6],
		TypeID:               record[7],
		CharacteristicTypeID: record[8],
		ModifierID:           record[9],
	}, nil
}

// Record returns the row's fields in Header order.
func (r Row) Record() []string {
	return []string{
		r.ID,
		r.EffectiveTime,
		r.Active,
		r.ModuleID,
		r.SourceID,
		r.DestinationID,
		r.RelationshipGroup,
		r.TypeID,
		r.CharacteristicTypeID,
		r.ModifierID,
	}
}

// IsActive reports whether the row's active column is "1".
func (r Row) IsActive() bool {
	return r.Active == constants.ActiveFlag
}

// String returns the row as a tab-delimited line without a terminator.
func (r Row) String() string {
	return strings.Join(r.Record(), string(constants.FieldSeparator))
}
