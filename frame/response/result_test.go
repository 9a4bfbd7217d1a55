package response

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scylla-go/cqldriver/frame"
)

func TestParseResultVoid(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(ResultVoid))

	got := ParseResult(&buf)
	if _, ok := got.(Void); !ok {
		t.Fatalf("wrong type %T", got)
	}
}

func TestParseResultSetKeyspace(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(ResultSetKeyspace))
	buf.WriteString("system")

	got, ok := ParseResult(&buf).(*SetKeyspace)
	if !ok || got.Keyspace != "system" {
		t.Fatalf("got %#v", got)
	}
}

func TestParseResultRows(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(ResultRows))
	buf.WriteInt(frame.Int(frame.GlobalTableSpec))
	buf.WriteInt(2)
	buf.WriteString("ks")
	buf.WriteString("tbl")
	buf.WriteString("id")
	frame.Option{ID: frame.IntID}.WriteTo(&buf)
	buf.WriteString("name")
	frame.Option{ID: frame.VarcharID}.WriteTo(&buf)
	buf.WriteInt(1)
	buf.WriteValue(frame.EncodeInt(7))
	buf.WriteValue(frame.EncodeText("scylla"))

	got, ok := ParseResult(&buf).(*Rows)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if buf.Error() != nil {
		t.Fatalf("unexpected error: %v", buf.Error())
	}
	if got.Metadata.GlobalKeyspace != "ks" || got.Metadata.GlobalTable != "tbl" {
		t.Fatalf("unexpected global spec: %#v", got.Metadata)
	}
	if len(got.Metadata.Columns) != 2 || got.Metadata.Columns[0].Name != "id" {
		t.Fatalf("unexpected columns: %#v", got.Metadata.Columns)
	}
	if len(got.RowsData) != 1 || len(got.RowsData[0]) != 2 {
		t.Fatalf("unexpected rows: %#v", got.RowsData)
	}
	first, err := got.RowsData[0].ByIndex(&got.Metadata, 0)
	if err != nil {
		t.Fatalf("ByIndex: %v", err)
	}
	n, err := first.AsInt32()
	if err != nil || n != 7 {
		t.Fatalf("unexpected first value: %v %v", n, err)
	}
}

func TestParseResultPrepared(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(ResultPrepared))
	buf.WriteShortBytes([]byte{0xAB, 0xCD})
	buf.WriteInt(frame.Int(frame.NoMetadata)) // params flags
	buf.WriteInt(0)                           // params columns_count
	buf.WriteInt(0)                           // params pk_count
	buf.WriteInt(frame.Int(frame.NoMetadata)) // result flags
	buf.WriteInt(0)                           // result columns_count

	got, ok := ParseResult(&buf).(*Prepared)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if buf.Error() != nil {
		t.Fatalf("unexpected error: %v", buf.Error())
	}
	if diff := cmp.Diff(got.ID, []byte{0xAB, 0xCD}); diff != "" {
		t.Fatal(diff)
	}
}

// TestParseResultPreparedWithPartitionKey exercises a realistic PREPARE
// response for "SELECT * FROM ks.tbl WHERE id = ?": one bind marker that
// is also the partition key, so pk_count is 1 and col_specs is non-empty
// (frame_result.rs's PreparedMetadata always carries pk_count/pk_indexes
// ahead of any column specs, regardless of the NO_METADATA bit).
func TestParseResultPreparedWithPartitionKey(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(ResultPrepared))
	buf.WriteShortBytes([]byte{0x01, 0x02})

	buf.WriteInt(frame.Int(frame.GlobalTableSpec)) // params flags
	buf.WriteInt(1)                                // params columns_count
	buf.WriteInt(1)                                // params pk_count
	buf.WriteShort(0)                              // params pk_indexes[0]
	buf.WriteString("ks")
	buf.WriteString("tbl")
	buf.WriteString("id")
	frame.Option{ID: frame.IntID}.WriteTo(&buf)

	buf.WriteInt(frame.Int(frame.GlobalTableSpec)) // result flags
	buf.WriteInt(1)                                // result columns_count
	buf.WriteString("ks")
	buf.WriteString("tbl")
	buf.WriteString("id")
	frame.Option{ID: frame.IntID}.WriteTo(&buf)

	got, ok := ParseResult(&buf).(*Prepared)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if buf.Error() != nil {
		t.Fatalf("unexpected error: %v", buf.Error())
	}
	if diff := cmp.Diff(got.ParametersMetadata.PkIndexes, []frame.Short{0}); diff != "" {
		t.Fatal(diff)
	}
	if len(got.ParametersMetadata.Columns) != 1 || got.ParametersMetadata.Columns[0].Name != "id" {
		t.Fatalf("unexpected params columns: %#v", got.ParametersMetadata.Columns)
	}
	if len(got.ResultMetadata.Columns) != 1 || got.ResultMetadata.Columns[0].Name != "id" {
		t.Fatalf("unexpected result columns: %#v", got.ResultMetadata.Columns)
	}
}

func TestParseResultSchemaChange(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(frame.Int(ResultSchemaChange))
	buf.WriteString(string(SchemaCreated))
	buf.WriteString(string(TargetTable))
	buf.WriteString("ks")
	buf.WriteString("tbl")

	got, ok := ParseResult(&buf).(*SchemaChange)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	want := &SchemaChange{ChangeType: SchemaCreated, Target: TargetTable, Keyspace: "ks", Table: "tbl"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseResultUnknownKind(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteInt(0x9999)

	if got := ParseResult(&buf); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
	if buf.Error() == nil {
		t.Fatal("expected buffer error")
	}
}

func FuzzParseResult(f *testing.F) {
	var seed frame.Buffer
	seed.WriteInt(frame.Int(ResultVoid))
	f.Add(seed.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) { //nolint:thelper
		var buf frame.Buffer
		buf.Write(data)
		_ = ParseResult(&buf)
	})
}
