package table

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, s string) *Frame {
	t.Helper()
	f, err := Read(strings.NewReader(s))
	require.NoError(t, err)
	return f
}

func TestRead(t *testing.T) {
	f := mustRead(t, "Sample\tPatient\tAge\r\n\ns1\tp1\t40\ns2\tp2\n")

	assert.Equal(t, []string{"Sample", "Patient", "Age"}, f.Columns)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"s1", "p1", "40"}, f.Rows[0])
	assert.Equal(t, []string{"s2", "p2", ""}, f.Rows[1], "short rows are padded")
	assert.False(t, f.Keyed())
}

func TestRead_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("a\tb\n1\t2\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	f, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Columns)
	assert.Equal(t, [][]string{{"1", "2"}}, f.Rows)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank lines only", "\n\n"},
		{"too many fields", "a\tb\n1\t2\t3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{
		"", "NA", "NaN", "nan", "N/A", "n/a", "NULL", "null", "None", "<NA>",
		"#N/A", "#N/A N/A", "#NA", "-NaN", "-nan", "-1.#IND", "-1.#QNAN", "1.#IND", "1.#QNAN",
	} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "na ", "Unknown", "nan1", "N/a", "NONE"} {
		assert.False(t, IsMissing(v), v)
	}
}

func TestSetIndexAndReset(t *testing.T) {
	f := mustRead(t, "Patient\tSample\tAge\np1\ts1\t40\np2\ts2\t50\n")

	require.NoError(t, f.SetIndex("Sample"))
	assert.Equal(t, "Sample", f.Index)
	assert.Equal(t, []string{"s1", "s2"}, f.Keys)
	assert.Equal(t, []string{"Patient", "Age"}, f.Columns)
	assert.Equal(t, []string{"p1", "40"}, f.Rows[0])

	assert.Error(t, f.SetIndex("Patient"), "already indexed")

	f.ResetIndex()
	assert.Equal(t, []string{"Sample", "Patient", "Age"}, f.Columns)
	assert.Equal(t, []string{"s2", "p2", "50"}, f.Rows[1])
	assert.Nil(t, f.Keys)
}

func TestSetIndex_MissingColumn(t *testing.T) {
	f := mustRead(t, "a\tb\n1\t2\n")
	assert.Error(t, f.SetIndex("c"))
}

func TestTranspose(t *testing.T) {
	f := mustRead(t, "Hugo_Symbol\tS1\tS2\tS3\nTP53\t-1\t0\t2\nKRAS\t1\t1\t0\n")
	require.NoError(t, f.SetIndex("Hugo_Symbol"))

	tr, err := f.Transpose("Sample")
	require.NoError(t, err)

	assert.Equal(t, "Sample", tr.Index)
	assert.Equal(t, []string{"S1", "S2", "S3"}, tr.Keys)
	assert.Equal(t, []string{"TP53", "KRAS"}, tr.Columns)
	assert.Equal(t, [][]string{{"-1", "1"}, {"0", "1"}, {"2", "0"}}, tr.Rows)
}

func TestTranspose_Unkeyed(t *testing.T) {
	f := mustRead(t, "a\n1\n")
	_, err := f.Transpose("x")
	assert.Error(t, err)
}

func TestDropMissingRows(t *testing.T) {
	f := mustRead(t, "Sample\tA\tB\ns1\t1\t2\ns2\t\t3\ns3\t4\tNaN\ns4\t0\t0\n")
	require.NoError(t, f.SetIndex("Sample"))

	f.DropMissingRows()
	assert.Equal(t, []string{"s1", "s4"}, f.Keys)
	assert.Equal(t, [][]string{{"1", "2"}, {"0", "0"}}, f.Rows)
}

func TestFilterKeysAndColumn(t *testing.T) {
	f := mustRead(t, "Sample\tPatient\ns1\tp1\ns2\tp2\ns3\tp3\n")
	require.NoError(t, f.FilterColumn("Patient", func(v string) bool { return v != "p2" }))
	assert.Equal(t, 2, f.Len())

	require.NoError(t, f.SetIndex("Sample"))
	f.FilterKeys(func(k string) bool { return k == "s3" })
	assert.Equal(t, []string{"s3"}, f.Keys)
	assert.Equal(t, [][]string{{"p3"}}, f.Rows)

	assert.Error(t, f.FilterColumn("nope", func(string) bool { return true }))
}

func TestFillMissing(t *testing.T) {
	f := mustRead(t, "a\tb\n\tNA\nx\ty\n")
	f.FillMissing(Missing)
	assert.Equal(t, [][]string{{"nan", "nan"}, {"x", "y"}}, f.Rows)
}

func TestMapColumnAndKeys(t *testing.T) {
	f := mustRead(t, "Sample\tPatient\ns1\tp1\n")
	require.NoError(t, f.MapColumn("Patient", strings.ToUpper))
	assert.Error(t, f.MapColumn("nope", strings.ToUpper))

	require.NoError(t, f.SetIndex("Sample"))
	f.MapKeys(func(k string) string { return "P " + k })
	assert.Equal(t, []string{"P s1"}, f.Keys)
	assert.Equal(t, "P1", f.Rows[0][0])
}

func TestColumnAndRename(t *testing.T) {
	f := mustRead(t, "a\tb\n1\t2\n3\t4\n")
	col, ok := f.Column("b")
	require.True(t, ok)
	assert.Equal(t, []string{"2", "4"}, col)

	_, ok = f.Column("c")
	assert.False(t, ok)

	require.NoError(t, f.RenameColumn("a", "Sample"))
	assert.Equal(t, 0, f.ColumnIndex("Sample"))
	assert.Error(t, f.RenameColumn("zzz", "y"))
}

func TestClone(t *testing.T) {
	f := mustRead(t, "Sample\tA\ns1\t1\n")
	require.NoError(t, f.SetIndex("Sample"))

	c := f.Clone()
	c.Rows[0][0] = "changed"
	c.Keys[0] = "changed"

	assert.Equal(t, "1", f.Rows[0][0])
	assert.Equal(t, "s1", f.Keys[0])
}

func TestRecords(t *testing.T) {
	f := mustRead(t, "Sample\tZ\tA\ns1\t1\t2\n")
	require.NoError(t, f.SetIndex("Sample"))

	recs := f.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"Sample", "Z", "A"}, recs[0].Fields)
	v, ok := recs[0].Get("A")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	_, ok = recs[0].Get("B")
	assert.False(t, ok)

	out, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.Equal(t, `[{"Sample":"s1","Z":"1","A":"2"}]`, string(out))
}
