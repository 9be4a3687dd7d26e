package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
)

var customers = Table{Name: "customers", Returning: []string{"id", "name", "address"}}

func TestBuild_EmptyFields(t *testing.T) {
	st, err := Build(customers, nil, 1, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidPatch))
	assert.Empty(t, st.SQL)
	assert.Nil(t, st.Args)
}

func TestBuild_KeepsInsertionOrder(t *testing.T) {
	var f Fields
	f.Set("address", "X")
	f.Set("name", "Y")

	st, err := Build(customers, f, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE customers SET address = ?, name = ? WHERE id = ? RETURNING id, name, address", st.SQL)
	assert.Equal(t, []any{"X", "Y", int64(7)}, st.Args)

	var g Fields
	g.Set("name", "Y")
	g.Set("address", "X")
	st, err = Build(customers, g, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE customers SET name = ?, address = ? WHERE id = ? RETURNING id, name, address", st.SQL)
	assert.Equal(t, []any{"Y", "X", int64(7)}, st.Args)
}

func TestBuild_AncestorScope(t *testing.T) {
	tbl := Table{Name: "repairs"}
	f := Fields{{Column: "status", Value: "completed"}}

	st, err := Build(tbl, f, 3, Fields{{Column: "service_id", Value: int64(9)}})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE repairs SET status = ? WHERE id = ? AND service_id = ?", st.SQL)
	assert.Equal(t, []any{"completed", int64(3), int64(9)}, st.Args)

	st, err = Build(tbl, f, 3, Fields{
		{Column: "service_id", Value: int64(9)},
		{Column: "customer_id", Value: int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE repairs SET status = ? WHERE id = ? AND service_id = ? AND customer_id = ?", st.SQL)
	assert.Equal(t, []any{"completed", int64(3), int64(9), int64(1)}, st.Args)
}

func TestBuild_RejectsBadIdentifiers(t *testing.T) {
	_, err := Build(Table{Name: "repairs; DROP TABLE x"}, Fields{{Column: "a", Value: 1}}, 1, nil)
	assert.True(t, apperr.Is(err, apperr.KindInvalidPatch))

	_, err = Build(Table{Name: "repairs"}, Fields{{Column: "a = 1 --", Value: 1}}, 1, nil)
	assert.True(t, apperr.Is(err, apperr.KindInvalidPatch))

	_, err = Build(Table{Name: "repairs"}, Fields{{Column: "a", Value: 1}}, 1, Fields{{Column: "Bad", Value: 1}})
	assert.True(t, apperr.Is(err, apperr.KindInvalidPatch))
}

func TestBuild_DuplicateColumn(t *testing.T) {
	f := Fields{{Column: "name", Value: "a"}, {Column: "name", Value: "b"}}
	_, err := Build(customers, f, 1, nil)
	assert.True(t, apperr.Is(err, apperr.KindInvalidPatch))
}

func TestFields_SetOverwritesInPlace(t *testing.T) {
	var f Fields
	f.Set("a", 1)
	f.Set("b", 2)
	f.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, f.Columns())
	v, ok := f.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	w := f.Without("a")
	assert.Equal(t, []string{"b"}, w.Columns())
	assert.Equal(t, []string{"a", "b"}, f.Columns())
}
