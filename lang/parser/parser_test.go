package parser

import (
	"testing"

	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/token"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	chunk, err := ParseChunk(nil, "test.chal", []byte(src))
	require.NoError(t, err)
	return chunk
}

func TestParseVarDef(t *testing.T) {
	chunk := parse(t, "let x = 1\nconst y: Int = 2\n")
	require.Len(t, chunk.Decls, 2)

	v1 := chunk.Decls[0].(*ast.VarDef)
	require.Equal(t, "x", v1.Name)
	require.False(t, v1.IsConst)
	require.Nil(t, v1.Type)
	require.Equal(t, int64(1), v1.Value.(*ast.IntLit).Value)

	v2 := chunk.Decls[1].(*ast.VarDef)
	require.Equal(t, "y", v2.Name)
	require.True(t, v2.IsConst)
	require.Equal(t, "Int", v2.Type.Name)
}

func TestParseListDef(t *testing.T) {
	chunk := parse(t, "let xs: List<Int> = [1, 2, 3]\n")
	v := chunk.Decls[0].(*ast.VarDef)
	require.Equal(t, "List", v.Type.Name)
	require.Equal(t, "Int", v.Type.Elem.Name)

	list := v.Value.(*ast.ListLit)
	require.Len(t, list.Elements, 3)
}

func TestParseExprPrecedence(t *testing.T) {
	chunk := parse(t, "let x = 1 + 2 * 3\n")
	v := chunk.Decls[0].(*ast.VarDef)
	top := v.Value.(*ast.BinOpr)
	require.Equal(t, token.PLUS, top.Op)
	require.Equal(t, int64(1), top.Left.(*ast.IntLit).Value)

	right := top.Right.(*ast.BinOpr)
	require.Equal(t, token.STAR, right.Op)
	require.Equal(t, int64(2), right.Left.(*ast.IntLit).Value)
	require.Equal(t, int64(3), right.Right.(*ast.IntLit).Value)
}

func TestParseUnaryAndLogical(t *testing.T) {
	chunk := parse(t, "let x = !a && -b\n")
	v := chunk.Decls[0].(*ast.VarDef)
	top := v.Value.(*ast.BinOpr)
	require.Equal(t, token.ANDAND, top.Op)

	left := top.Left.(*ast.UnaryOpr)
	require.Equal(t, token.BANG, left.Op)

	right := top.Right.(*ast.UnaryOpr)
	require.Equal(t, token.MINUS, right.Op)
}

func TestParseCallAndAttrChain(t *testing.T) {
	chunk := parse(t, "a.b.c(1, 2)\n")
	stmt := chunk.Decls[0].(*ast.ExprStmt)
	chain := stmt.X.(*ast.AttrRes)
	require.Len(t, chain.Chain, 3)

	require.IsType(t, &ast.VarCall{}, chain.Chain[0])
	require.Equal(t, "a", chain.Chain[0].(*ast.VarCall).Name)
	require.IsType(t, &ast.VarCall{}, chain.Chain[1])
	require.Equal(t, "b", chain.Chain[1].(*ast.VarCall).Name)

	call := chain.Chain[2].(*ast.FuncCall)
	require.Equal(t, "c", call.Name)
	require.Len(t, call.Args, 2)
}

func TestParseIfElifElse(t *testing.T) {
	src := "if a:\n    let x = 1\nelif b:\n    let y = 2\nelse:\n    let z = 3\n"
	chunk := parse(t, src)
	ifs := chunk.Decls[0].(*ast.IfStmt)
	require.Len(t, ifs.Body.Stmts, 1)
	require.Len(t, ifs.Elifs, 1)
	require.NotNil(t, ifs.Else)
	require.Len(t, ifs.Else.Stmts, 1)
}

func TestParseWhileLoop(t *testing.T) {
	chunk := parse(t, "while x < 10:\n    x = x + 1\n")
	w := chunk.Decls[0].(*ast.WhileLoop)
	require.Equal(t, token.LT, w.Cond.(*ast.BinOpr).Op)
	require.Len(t, w.Body.Stmts, 1)

	assign := w.Body.Stmts[0].(*ast.Assign)
	require.Equal(t, token.EQ, assign.Op)
}

func TestParseForLoop(t *testing.T) {
	chunk := parse(t, "for item in xs:\n    print(item)\n")
	f := chunk.Decls[0].(*ast.ForLoop)
	require.Equal(t, "item", f.IterName)
	require.Equal(t, "xs", f.Iterable.(*ast.VarCall).Name)
	require.Len(t, f.Body.Stmts, 1)
}

func TestParseFuncDef(t *testing.T) {
	chunk := parse(t, "fn fib(n: Int) -> Uint:\n    if n > 2:\n        return fib(n-2)\n    return 1\n")
	fn := chunk.Decls[0].(*ast.FuncDef)
	require.Equal(t, "fib", fn.Name)
	require.False(t, fn.IsUnsafe)
	require.Len(t, fn.Args, 1)
	require.Equal(t, "n", fn.Args[0].Name)
	require.Equal(t, "Int", fn.Args[0].Type.Name)
	require.Equal(t, "Uint", fn.RetType.Name)
	require.Len(t, fn.Body.Stmts, 2)
}

func TestParseUnsafeFuncDef(t *testing.T) {
	chunk := parse(t, "fn explode!(x: Int):\n    throw 'bad'\n")
	fn := chunk.Decls[0].(*ast.FuncDef)
	require.Equal(t, "explode", fn.Name)
	require.True(t, fn.IsUnsafe)
}

func TestParseClassDef(t *testing.T) {
	src := "class Point:\n    x: Int\n    y: Int\n    fn sum(self) -> Int:\n        return self.x\n"
	chunk := parse(t, src)
	c := chunk.Decls[0].(*ast.ClassDef)
	require.Equal(t, "Point", c.Name)
	require.Len(t, c.Members, 2)
	require.Equal(t, "x", c.Members[0].Name)
	require.Len(t, c.Methods, 1)
	require.Equal(t, "sum", c.Methods[0].Name)
	require.Equal(t, "Point", c.Methods[0].Namespace)
}

func TestParseTryCatchThrow(t *testing.T) {
	src := "try:\n    throw 'bad'\ncatch(e: Exception):\n    print(e)\n"
	chunk := parse(t, src)
	tc := chunk.Decls[0].(*ast.TryCatch)
	require.Equal(t, "e", tc.ExceptionVar)
	require.Len(t, tc.TryBody.Stmts, 1)
	require.IsType(t, &ast.Throw{}, tc.TryBody.Stmts[0])
	require.Len(t, tc.CatchBody.Stmts, 1)
}

func TestParseReturnBreakContinue(t *testing.T) {
	src := "while true:\n    if x:\n        break\n    else:\n        continue\nreturn\n"
	chunk := parse(t, src)
	require.Len(t, chunk.Decls, 2)

	w := chunk.Decls[0].(*ast.WhileLoop)
	ifs := w.Body.Stmts[0].(*ast.IfStmt)
	require.IsType(t, &ast.BreakStmt{}, ifs.Body.Stmts[0])
	require.IsType(t, &ast.ContStmt{}, ifs.Else.Stmts[0])

	ret := chunk.Decls[1].(*ast.RetStmt)
	require.Nil(t, ret.Value)
}

func TestParseAugAssign(t *testing.T) {
	chunk := parse(t, "x += 1\n")
	assign := chunk.Decls[0].(*ast.Assign)
	require.Equal(t, token.PLUS_EQ, assign.Op)
	require.Equal(t, "x", assign.Lhs.(*ast.VarCall).Name)
}

func TestParseSyntaxErrorProducesBadStmt(t *testing.T) {
	chunk, err := ParseChunk(nil, "test.chal", []byte("let = 1\nlet y = 2\n"))
	require.Error(t, err)
	require.Len(t, chunk.Decls, 2)
	require.IsType(t, &ast.BadStmt{}, chunk.Decls[0])

	v := chunk.Decls[1].(*ast.VarDef)
	require.Equal(t, "y", v.Name)
}

func TestParseFilesMissingFileAccumulatesError(t *testing.T) {
	_, err := ParseFiles(nil, "/no/such/file.chal")
	require.Error(t, err)
}
