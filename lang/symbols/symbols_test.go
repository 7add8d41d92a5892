package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aalyth/chalcedony/lang/types"
)

func TestDefineGlobalIsIdempotent(t *testing.T) {
	tbl := NewTable()
	g1, created1 := tbl.DefineGlobal("x", types.TInt, false)
	g2, created2 := tbl.DefineGlobal("x", types.TInt, false)
	require.True(t, created1)
	require.False(t, created2)
	require.Same(t, g1, g2)
	require.Equal(t, 1, tbl.NumGlobals())
}

func TestScopeLocalsAndArgsAreIndependent(t *testing.T) {
	tbl := NewTable()
	scope := tbl.PushScope()
	scope.DefineArg("n", 0, types.TInt)
	l1, created := scope.DefineLocal("acc", types.TInt, false)
	require.True(t, created)
	require.Equal(t, 0, l1.Slot)

	_, ok := scope.LookupArg("n")
	require.True(t, ok)
	_, ok = scope.LookupLocal("n")
	require.False(t, ok, "arguments and locals are distinct tables")

	tbl.PopScope()
	require.Nil(t, tbl.CurrentScope())
}

func TestResolveFuncOverloading(t *testing.T) {
	tbl := NewTable()
	tbl.DefineFunc(&Func{Name: "f", Args: []*types.Type{types.TInt}, RetType: types.TVoid})
	tbl.DefineFunc(&Func{Name: "f", Args: []*types.Type{types.TStr}, RetType: types.TVoid})

	fn, ambiguous := tbl.ResolveFunc("", "f", []*types.Type{types.TInt})
	require.False(t, ambiguous)
	require.NotNil(t, fn)
	require.Equal(t, types.TInt, fn.Args[0])

	fn, ambiguous = tbl.ResolveFunc("", "f", []*types.Type{types.TStr})
	require.False(t, ambiguous)
	require.Equal(t, types.TStr, fn.Args[0])
}

func TestResolveFuncWideningPrefersCheapestWidening(t *testing.T) {
	tbl := NewTable()
	tbl.DefineFunc(&Func{Name: "g", Args: []*types.Type{types.TInt}, RetType: types.TVoid})
	tbl.DefineFunc(&Func{Name: "g", Args: []*types.Type{types.TFloat}, RetType: types.TVoid})

	// Uint widens to Int at cost 1 and to Float at cost 3: Int wins.
	fn, ambiguous := tbl.ResolveFunc("", "g", []*types.Type{types.TUint})
	require.False(t, ambiguous)
	require.Equal(t, types.TInt, fn.Args[0])
}

func TestResolveFuncNoMatch(t *testing.T) {
	tbl := NewTable()
	tbl.DefineFunc(&Func{Name: "h", Args: []*types.Type{types.TStr}, RetType: types.TVoid})
	fn, ambiguous := tbl.ResolveFunc("", "h", []*types.Type{types.TInt})
	require.Nil(t, fn)
	require.False(t, ambiguous)
}

func TestDefineClassRejectsDuplicate(t *testing.T) {
	tbl := NewTable()
	require.True(t, tbl.DefineClass(&Class{Name: "Point"}))
	require.False(t, tbl.DefineClass(&Class{Name: "Point"}))
}

func TestClassMember(t *testing.T) {
	c := &Class{Name: "Point", Members: []*Member{
		{Index: 0, Name: "x", Type: types.TInt},
		{Index: 1, Name: "y", Type: types.TInt},
	}}
	m := c.Member("y")
	require.NotNil(t, m)
	require.Equal(t, 1, m.Index)
	require.Nil(t, c.Member("z"))
}
