package scanner

import (
	"os"
	"testing"

	"github.com/aalyth/chalcedony/lang/token"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// scan tokenizes src in full and returns the resulting tokens (without
// positions, to keep test tables compact) plus any accumulated errors.
func scan(t *testing.T, src string) ([]token.Token, []token.Value, ErrorList) {
	t.Helper()
	var s Scanner
	var el ErrorList
	s.Init(token.NewFile("test.chal"), []byte(src), func(pos token.Position, msg string) {
		el = append(el, Error{Pos: pos, Msg: msg})
	})

	var toks []token.Token
	var vals []token.Value
	var v token.Value
	for {
		tok := s.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, el
}

func TestScanIdentsAndKeywords(t *testing.T) {
	toks, vals, errs := scan(t, "let x fn foo return")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.FN, token.IDENT, token.RETURN, token.EOF,
	}, toks)
	require.Equal(t, "x", vals[1].Raw)
	require.Equal(t, "foo", vals[3].Raw)
}

func TestScanNumbers(t *testing.T) {
	toks, vals, errs := scan(t, "42 3.14 7u 0x1F")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.INT, token.FLOAT, token.UINT, token.INT, token.EOF,
	}, toks)
	require.Equal(t, int64(42), vals[0].Int)
	require.Equal(t, 3.14, vals[1].Float)
	require.Equal(t, uint64(7), vals[2].Uint)
	require.Equal(t, int64(0x1F), vals[3].Int)
}

func TestScanStrings(t *testing.T) {
	toks, vals, errs := scan(t, `"hello" 'world' "a\nb"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.STRING, token.STRING, token.EOF}, toks)
	require.Equal(t, "hello", vals[0].String)
	require.Equal(t, "world", vals[1].String)
	require.Equal(t, "a\nb", vals[2].String)
}

func TestScanUnterminatedString(t *testing.T) {
	_, _, errs := scan(t, `"hello`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Msg, "not terminated")
}

func TestScanOperators(t *testing.T) {
	toks, _, errs := scan(t, "+ - * / % == != <= >= < > && || -> += -=")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQEQ, token.NEQ, token.LE, token.GE, token.LT, token.GT,
		token.ANDAND, token.OROR, token.ARROW, token.PLUS_EQ, token.MINUS_EQ,
		token.EOF,
	}, toks)
}

func TestScanCommentsAreWhitespace(t *testing.T) {
	toks, _, errs := scan(t, "let x = 1 # trailing comment\nlet y = 2")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.LET, token.IDENT, token.EQ, token.INT, token.EOF,
	}, toks)
}

func TestScanBlankAndCommentOnlyLinesDontAffectIndentation(t *testing.T) {
	src := "fn f():\n    let x = 1\n\n    # a comment on its own line\n    let y = 2\n"
	toks, _, errs := scan(t, src)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.FN, token.IDENT, token.LPAREN, token.RPAREN, token.COLON, token.NEWLINE,
		token.INDENT,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	}, toks)
}

func TestScanIndentAndDedent(t *testing.T) {
	src := "if x:\n    let a = 1\n    let b = 2\nlet c = 3\n"
	toks, _, errs := scan(t, src)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.DEDENT,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanNestedIndentEmitsOneDedentPerLevel(t *testing.T) {
	src := "if a:\n    if b:\n        let x = 1\nlet y = 2\n"
	toks, _, errs := scan(t, src)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.DEDENT,
		token.DEDENT,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanInconsistentDedentReportsError(t *testing.T) {
	src := "if a:\n    let x = 1\n   let y = 2\n"
	_, _, errs := scan(t, src)
	require.NotEmpty(t, errs)
	require.Contains(t, errs[0].Msg, "inconsistent dedent")
}

func TestScanBracketsSuppressNewlineSignificance(t *testing.T) {
	src := "let xs = [\n    1,\n    2,\n]\n"
	toks, _, errs := scan(t, src)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.LBRACK,
		token.INT, token.COMMA, token.INT, token.COMMA,
		token.RBRACK, token.NEWLINE, token.EOF,
	}, toks)
}

func TestScanEOFClosesOpenIndentation(t *testing.T) {
	src := "if a:\n    if b:\n        let x = 1\n"
	toks, _, errs := scan(t, src)
	require.Empty(t, errs)
	last := toks[len(toks)-1]
	require.Equal(t, token.EOF, last)
	require.Equal(t, token.DEDENT, toks[len(toks)-2])
	require.Equal(t, token.DEDENT, toks[len(toks)-3])
}

func TestScanIllegalCharacter(t *testing.T) {
	_, _, errs := scan(t, "let x = @")
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Msg, "illegal character")
}

func TestScanFilesReadsMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	f1 := dir + "/a.chal"
	f2 := dir + "/b.chal"
	require.NoError(t, writeFile(f1, "let x = 1\n"))
	require.NoError(t, writeFile(f2, "let y = 2\n"))

	toksByFile, err := ScanFiles(nil, f1, f2)
	require.NoError(t, err)
	require.Len(t, toksByFile, 2)
	require.Equal(t, token.LET, toksByFile[0][0].Token)
	require.Equal(t, token.LET, toksByFile[1][0].Token)
}

func TestScanFilesMissingFileAccumulatesError(t *testing.T) {
	_, err := ScanFiles(nil, "/no/such/file.chal")
	require.Error(t, err)
}
