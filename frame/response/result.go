package response

import (
	"fmt"

	"github.com/scylla-go/cqldriver/frame"
)

// ResultKind is the leading int of a RESULT body that selects its shape
// (§3 "Result").
type ResultKind frame.Int

const (
	ResultVoid         ResultKind = 0x0001
	ResultRows         ResultKind = 0x0002
	ResultSetKeyspace  ResultKind = 0x0003
	ResultPrepared     ResultKind = 0x0004
	ResultSchemaChange ResultKind = 0x0005
)

// Result is any parsed RESULT body variant.
type Result interface {
	Kind() ResultKind
}

// Void is returned for statements that produce no rows (most DML).
type Void struct{}

func (Void) Kind() ResultKind { return ResultVoid }

// Rows carries the metadata and row payload of a SELECT result (§3 "Row").
type Rows struct {
	Metadata frame.RowsMetadata
	RowsData []frame.Row
}

func (*Rows) Kind() ResultKind { return ResultRows }

// SetKeyspace reports the keyspace a USE statement switched to.
type SetKeyspace struct {
	Keyspace string
}

func (*SetKeyspace) Kind() ResultKind { return ResultSetKeyspace }

// Prepared carries the id and bind/result metadata produced by preparing
// a statement (§3 "Prepared statement").
type Prepared struct {
	ID                []byte
	ParametersMetadata frame.ResultMetadata
	ResultMetadata    frame.ResultMetadata
}

func (*Prepared) Kind() ResultKind { return ResultPrepared }

// SchemaChangeKind is the change type reported by a SCHEMA_CHANGE result
// or event (§3, §4.8).
type SchemaChangeKind string

const (
	SchemaCreated SchemaChangeKind = "CREATED"
	SchemaUpdated SchemaChangeKind = "UPDATED"
	SchemaDropped SchemaChangeKind = "DROPPED"
)

// SchemaChangeTarget is what the schema change applies to.
type SchemaChangeTarget string

const (
	TargetKeyspace  SchemaChangeTarget = "KEYSPACE"
	TargetTable     SchemaChangeTarget = "TABLE"
	TargetType      SchemaChangeTarget = "TYPE"
	TargetFunction  SchemaChangeTarget = "FUNCTION"
	TargetAggregate SchemaChangeTarget = "AGGREGATE"
)

// SchemaChange is both a RESULT variant (response to a DDL statement)
// and an EVENT variant (unsolicited notification), §3, §4.8.
type SchemaChange struct {
	ChangeType SchemaChangeKind
	Target     SchemaChangeTarget
	Keyspace   string
	Table      string   // set iff Target is TABLE or TYPE
	Name       string   // function/aggregate name, set iff Target is FUNCTION/AGGREGATE
	ArgTypes   frame.StringList // function/aggregate signature, set iff Target is FUNCTION/AGGREGATE
}

func (*SchemaChange) Kind() ResultKind { return ResultSchemaChange }

// ParseResult dispatches on the leading int kind (§3 "Result").
func ParseResult(b *frame.Buffer) Result {
	kind := ResultKind(b.ReadInt())
	if b.Error() != nil {
		return nil
	}
	switch kind {
	case ResultVoid:
		return Void{}
	case ResultRows:
		md := parseRowsMetadata(b)
		rows := parseRowsData(b, md)
		if b.Error() != nil {
			return nil
		}
		return &Rows{Metadata: md, RowsData: rows}
	case ResultSetKeyspace:
		return &SetKeyspace{Keyspace: b.ReadString()}
	case ResultPrepared:
		id := b.ReadShortBytes()
		params := parseParametersMetadata(b)
		result := parseRowsMetadata(b)
		if b.Error() != nil {
			return nil
		}
		return &Prepared{ID: id, ParametersMetadata: params, ResultMetadata: result}
	case ResultSchemaChange:
		sc := parseSchemaChange(b)
		if b.Error() != nil {
			return nil
		}
		return sc
	default:
		b.Fail(fmt.Errorf("%w: unknown result kind 0x%04x", frame.ErrMalformedFrame, frame.Int(kind)))
		return nil
	}
}

func parseRowsMetadata(b *frame.Buffer) frame.RowsMetadata {
	var md frame.RowsMetadata
	md.Flags = frame.MetadataFlags(b.ReadInt())
	md.ColumnsCount = int32(b.ReadInt())

	if md.Flags.Has(frame.HasMorePages) {
		md.PagingState = b.ReadBytes()
	}
	if md.Flags.Has(frame.NoMetadata) {
		return md
	}

	global := md.Flags.Has(frame.GlobalTableSpec)
	if global {
		md.GlobalKeyspace = b.ReadString()
		md.GlobalTable = b.ReadString()
	}

	md.Columns = make([]frame.ColumnSpec, md.ColumnsCount)
	for i := range md.Columns {
		var cs frame.ColumnSpec
		if !global {
			cs.Keyspace = b.ReadString()
			cs.Table = b.ReadString()
		} else {
			cs.Keyspace = md.GlobalKeyspace
			cs.Table = md.GlobalTable
		}
		cs.Name = b.ReadString()
		cs.Type = frame.ParseOption(b)
		md.Columns[i] = cs
	}
	return md
}

// parseParametersMetadata reads a PREPARED response's bind-marker
// metadata. It has the same leading shape as parseRowsMetadata but a
// real server unconditionally emits pk_count and pk_indexes right after
// columns_count, which result/rows metadata never carries (§3 "Prepared
// statement").
func parseParametersMetadata(b *frame.Buffer) frame.RowsMetadata {
	var md frame.RowsMetadata
	md.Flags = frame.MetadataFlags(b.ReadInt())
	md.ColumnsCount = int32(b.ReadInt())

	pkCount := b.ReadInt()
	md.PkIndexes = make([]frame.Short, pkCount)
	for i := range md.PkIndexes {
		md.PkIndexes[i] = b.ReadShort()
	}

	global := md.Flags.Has(frame.GlobalTableSpec)
	if global {
		md.GlobalKeyspace = b.ReadString()
		md.GlobalTable = b.ReadString()
	}

	md.Columns = make([]frame.ColumnSpec, md.ColumnsCount)
	for i := range md.Columns {
		var cs frame.ColumnSpec
		if !global {
			cs.Keyspace = b.ReadString()
			cs.Table = b.ReadString()
		} else {
			cs.Keyspace = md.GlobalKeyspace
			cs.Table = md.GlobalTable
		}
		cs.Name = b.ReadString()
		cs.Type = frame.ParseOption(b)
		md.Columns[i] = cs
	}
	return md
}

func parseRowsData(b *frame.Buffer, md frame.RowsMetadata) []frame.Row {
	rowsCount := b.ReadInt()
	if b.Error() != nil {
		return nil
	}
	rows := make([]frame.Row, rowsCount)
	for i := range rows {
		row := make(frame.Row, md.ColumnsCount)
		for j := range row {
			row[j] = b.ReadValue()
		}
		rows[i] = row
	}
	return rows
}

func parseSchemaChange(b *frame.Buffer) *SchemaChange {
	sc := &SchemaChange{
		ChangeType: SchemaChangeKind(b.ReadString()),
		Target:     SchemaChangeTarget(b.ReadString()),
		Keyspace:   b.ReadString(),
	}
	switch sc.Target {
	case TargetTable, TargetType:
		sc.Table = b.ReadString()
	case TargetFunction, TargetAggregate:
		sc.Name = b.ReadString()
		sc.ArgTypes = b.ReadStringList()
	}
	return sc
}
