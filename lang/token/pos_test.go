package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(12, 34)
	line, col := p.LineCol()
	require.Equal(t, 12, line)
	require.Equal(t, 34, col)
}

func TestPosUnknown(t *testing.T) {
	require.True(t, Pos(0).Unknown())
	require.False(t, MakePos(1, 1).Unknown())
}

func TestPositionString(t *testing.T) {
	f := NewFile("main.chal")
	pos := f.Position(MakePos(3, 7))
	require.Equal(t, "main.chal:3:7", pos.String())

	noFile := Position{Line: 3, Column: 7}
	require.Equal(t, "3:7", noFile.String())
}
