package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String())
	}
}

func TestLookupKw(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok > kwStart && tok < kwEnd
		got := LookupKw(tokenNames[tok])
		if expect {
			require.Equal(t, tok, got)
		} else if tok != IDENT {
			require.Equal(t, IDENT, got)
		}
	}
}

func TestLookupPunct(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok > punctStart && tok < punctEnd
		got := LookupPunct(tokenNames[tok])
		if expect {
			require.Equal(t, tok, got)
		}
	}
}

func TestIsAugBinop(t *testing.T) {
	require.True(t, PLUS_EQ.IsAugBinop())
	require.True(t, PCT_EQ.IsAugBinop())
	require.False(t, PLUS.IsAugBinop())
	require.False(t, EQ.IsAugBinop())
}

func TestBinOp(t *testing.T) {
	require.Equal(t, PLUS, PLUS_EQ.BinOp())
	require.Equal(t, SLASH, SLASH_EQ.BinOp())
	require.Equal(t, ILLEGAL, PLUS.BinOp())
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'if'", IF.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}
