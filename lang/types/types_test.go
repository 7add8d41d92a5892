package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWideningCost(t *testing.T) {
	require.Equal(t, 1, WideningCost(TInt, TUint))
	require.Equal(t, 2, WideningCost(TFloat, TInt))
	require.Equal(t, 3, WideningCost(TFloat, TUint))
	require.Equal(t, -1, WideningCost(TUint, TInt))
	require.Equal(t, -1, WideningCost(TStr, TInt))
	require.Equal(t, 0, WideningCost(TAny, TStr))
}

func TestCast(t *testing.T) {
	op, ok := Cast(TInt, TUint)
	require.True(t, ok)
	require.Equal(t, "CastI", op)

	op, ok = Cast(TFloat, TInt)
	require.True(t, ok)
	require.Equal(t, "CastF", op)

	op, ok = Cast(TFloat, TUint)
	require.True(t, ok)
	require.Equal(t, "CastF", op)

	_, ok = Cast(TUint, TInt)
	require.False(t, ok)

	op, ok = Cast(TInt, TInt)
	require.True(t, ok)
	require.Equal(t, "", op)
}

func TestBinOpTypeArith(t *testing.T) {
	r, err := BinOpType(Add, TInt, TUint)
	require.NoError(t, err)
	require.Equal(t, TInt, r)

	r, err = BinOpType(Add, TStr, TInt)
	require.NoError(t, err)
	require.Equal(t, TStr, r)

	r, err = BinOpType(Mul, TStr, TUint)
	require.NoError(t, err)
	require.Equal(t, TStr, r)

	_, err = BinOpType(Sub, TStr, TUint)
	require.Error(t, err)

	r, err = BinOpType(Div, TUint, TUint)
	require.NoError(t, err)
	require.Equal(t, TFloat, r)
}

func TestBinOpTypeCmpAndEq(t *testing.T) {
	r, err := BinOpType(Lt, TInt, TFloat)
	require.NoError(t, err)
	require.Equal(t, TBool, r)

	r, err = BinOpType(EqEq, TStr, TStr)
	require.NoError(t, err)
	require.Equal(t, TBool, r)

	r, err = BinOpType(Lt, TStr, TStr)
	require.NoError(t, err, "strings are ordered as well as compared for equality")
	require.Equal(t, TBool, r)

	r, err = BinOpType(EqEq, TBool, TBool)
	require.NoError(t, err)
	require.Equal(t, TBool, r)
}

func TestUnaryOpType(t *testing.T) {
	r, err := UnaryOpType(Neg, TUint)
	require.NoError(t, err)
	require.Equal(t, TInt, r)

	r, err = UnaryOpType(Not, TFloat)
	require.NoError(t, err)
	require.Equal(t, TBool, r)

	_, err = UnaryOpType(Neg, TStr)
	require.Error(t, err)
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "List<Int>", ListOf(TInt).String())
	require.Equal(t, "Point", CustomNamed("Point").String())
}
