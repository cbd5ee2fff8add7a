package infer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"

	"github.com/azstreams/dcrbuilder/dcr"
)

func mustParse(t *testing.T, s string) *fastjson.Value {
	t.Helper()
	v, err := fastjson.Parse(s)
	assert.Nil(t, err)
	return v
}

func colTypes(cols []dcr.Column) map[string]dcr.ColumnType {
	m := make(map[string]dcr.ColumnType, len(cols))
	for _, c := range cols {
		m[c.Name] = c.Type
	}
	return m
}

func TestColumnsSimpleObject(t *testing.T) {
	v := mustParse(t, `{"name":"John","age":30,"active":true,"balance":100.5,"created":"2024-01-15T10:30:00Z"}`)
	cols := Columns(v)

	assert.Len(t, cols, 5)
	// Alphabetical output order.
	assert.Equal(t, "active", cols[0].Name)
	assert.Equal(t, "age", cols[1].Name)
	assert.Equal(t, "balance", cols[2].Name)
	assert.Equal(t, "created", cols[3].Name)
	assert.Equal(t, "name", cols[4].Name)

	assert.Equal(t, dcr.TypeBoolean, cols[0].Type)
	assert.Equal(t, dcr.TypeInt, cols[1].Type)
	assert.Equal(t, dcr.TypeReal, cols[2].Type)
	assert.Equal(t, dcr.TypeDatetime, cols[3].Type)
	assert.Equal(t, dcr.TypeString, cols[4].Type)
}

func TestColumnsScalarRootsEmpty(t *testing.T) {
	for _, s := range []string{`42`, `3.14`, `"hello"`, `true`, `null`} {
		cols := Columns(mustParse(t, s))
		assert.Len(t, cols, 0, "root %s", s)
	}
}

func TestColumnsEmptyInputs(t *testing.T) {
	assert.Len(t, Columns(nil), 0)
	assert.Len(t, Columns(mustParse(t, `{}`)), 0)
	assert.Len(t, Columns(mustParse(t, `[]`)), 0)
}

func TestColumnsNestedValuesAreDynamic(t *testing.T) {
	v := mustParse(t, `{"user":{"name":"John","age":30},"tags":["a","b","c"]}`)
	types := colTypes(Columns(v))
	assert.Equal(t, dcr.TypeDynamic, types["user"])
	assert.Equal(t, dcr.TypeDynamic, types["tags"])
}

func TestColumnsFieldUnionAcrossSamples(t *testing.T) {
	v := mustParse(t, `[{"a":1},{"b":"x"},{"a":2,"c":true}]`)
	cols := Columns(v)
	assert.Len(t, cols, 3)
	types := colTypes(cols)
	assert.Equal(t, dcr.TypeInt, types["a"])
	assert.Equal(t, dcr.TypeString, types["b"])
	assert.Equal(t, dcr.TypeBoolean, types["c"])
}

func TestColumnsNullsDoNotPolluteTally(t *testing.T) {
	v := mustParse(t, `[{"n":1},{"n":null},{"n":2},{"n":null},{"n":3}]`)
	types := colTypes(Columns(v))
	assert.Equal(t, dcr.TypeInt, types["n"])
}

func TestColumnsAllNullFieldIsString(t *testing.T) {
	v := mustParse(t, `[{"x":null},{"x":null}]`)
	types := colTypes(Columns(v))
	assert.Equal(t, dcr.TypeString, types["x"])
}

func TestColumnsMajorityWins(t *testing.T) {
	// Nine dates and one stray string should still read as datetime.
	var parts []string
	for i := 1; i <= 9; i++ {
		parts = append(parts, fmt.Sprintf(`{"ts":"2024-01-0%d"}`, i))
	}
	parts = append(parts, `{"ts":"not a date"}`)
	v := mustParse(t, "["+strings.Join(parts, ",")+"]")

	types := colTypes(Columns(v))
	assert.Equal(t, dcr.TypeDatetime, types["ts"])
}

func TestColumnsTieBreakFirstSeen(t *testing.T) {
	v := mustParse(t, `[{"v":"a"},{"v":1}]`)
	types := colTypes(Columns(v))
	assert.Equal(t, dcr.TypeString, types["v"])

	v = mustParse(t, `[{"v":1},{"v":"a"}]`)
	types = colTypes(Columns(v))
	assert.Equal(t, dcr.TypeInt, types["v"])
}

func TestColumnsSkipsNonObjectElements(t *testing.T) {
	v := mustParse(t, `[{"a":1},"noise",42,null,{"a":2}]`)
	cols := Columns(v)
	assert.Len(t, cols, 1)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, dcr.TypeInt, cols[0].Type)
}

func TestColumnsLargeHomogeneousArray(t *testing.T) {
	var parts []string
	for i := 0; i < 100; i++ {
		parts = append(parts, fmt.Sprintf(`{"id":%d,"name":"u%d","score":%d.5}`, i, i, i))
	}
	v := mustParse(t, "["+strings.Join(parts, ",")+"]")

	cols := Columns(v)
	assert.Len(t, cols, 3)
	types := colTypes(cols)
	assert.Equal(t, dcr.TypeInt, types["id"])
	assert.Equal(t, dcr.TypeString, types["name"])
	assert.Equal(t, dcr.TypeReal, types["score"])
}

func TestColumnsFreshIDs(t *testing.T) {
	v := mustParse(t, `{"a":1,"b":2}`)
	cols := Columns(v)
	assert.NotEmpty(t, cols[0].ID)
	assert.NotEmpty(t, cols[1].ID)
	assert.NotEqual(t, cols[0].ID, cols[1].ID)
}

func TestSampleIndicesSmall(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, sampleIndices(3))
}

func TestSampleIndicesLarge(t *testing.T) {
	idx := sampleIndices(1000)
	assert.LessOrEqual(t, len(idx), MaxSamples)
	assert.Equal(t, 0, idx[0])
	assert.Contains(t, idx, 500)
	assert.Contains(t, idx, 999)
	// Deterministic.
	assert.Equal(t, idx, sampleIndices(1000))
}
