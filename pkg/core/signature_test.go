package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureTable_PreservesInsertionOrder(t *testing.T) {
	tbl := NewSignatureTable(3)
	require.NoError(t, tbl.Add("zeta", []string{"x"}))
	require.NoError(t, tbl.Add("alpha", nil))
	require.NoError(t, tbl.Add("mid", []string{"a", "b"}))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, tbl.Names())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 2, tbl.MaxArity())

	params, ok := tbl.Get("alpha")
	require.True(t, ok)
	assert.NotNil(t, params, "nil params should be stored as an empty list")
	assert.Empty(t, params)
}

func TestSignatureTable_Duplicate(t *testing.T) {
	tbl := NewSignatureTable(0)
	require.NoError(t, tbl.Add("f", []string{"a"}))

	err := tbl.Add("f", []string{"b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCallable))

	var dupErr *DuplicateCallableError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "f", dupErr.Name)

	params, _ := tbl.Get("f")
	assert.Equal(t, []string{"a"}, params, "first registration must be kept")
}

func TestSignatureTable_Empty(t *testing.T) {
	tbl := NewSignatureTable(0)
	assert.Equal(t, 0, tbl.MaxArity())
	assert.Empty(t, tbl.Names())

	_, ok := tbl.Get("missing")
	assert.False(t, ok)
}

func TestParams_ReturnsCopy(t *testing.T) {
	p := Params{"a", "b"}
	names := p.ParameterNames()
	names[0] = "changed"
	assert.Equal(t, "a", p[0])
}

func TestUnknownCallableError(t *testing.T) {
	var err error = &UnknownCallableError{Name: "not_a_real_function"}
	assert.True(t, errors.Is(err, ErrUnknownCallable))
	assert.False(t, errors.Is(err, ErrDuplicateCallable))
	assert.Contains(t, err.Error(), "not_a_real_function")
}

func TestTable_HeaderAndRecord(t *testing.T) {
	tbl := &Table{
		RowHeader:    DefaultRowHeader,
		RowLabels:    []string{"f1", "f3"},
		ColumnLabels: []string{"arg_1"},
		Rows:         Grid{{"a"}, {""}},
	}

	assert.Equal(t, []string{"fun", "arg_1"}, tbl.Header())
	assert.Equal(t, []string{"f3", ""}, tbl.Record(1))
	assert.Equal(t, 1, tbl.Rows.Width())
	assert.Equal(t, 0, Grid{}.Width())
}
