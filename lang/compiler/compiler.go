package compiler

import (
	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/symbols"
	"github.com/aalyth/chalcedony/lang/token"
	"github.com/aalyth/chalcedony/lang/types"
)

// Compiler lowers one chunk to a Program against a shared symbol table. Its
// zero value is not usable; construct one with Compile.
type Compiler struct {
	symbols *symbols.Table
	prog    *Program
	errs    ErrorList

	namespace string // "" unless compiling the body of a method
	inUnsafe  bool
	inTry     bool
	inCatch   bool // a catch body forbids throw and calls to unsafe functions
	loops     []*loopPatch

	compiled map[*symbols.Func]bool
	pending  map[*symbols.Func][]int // CallFunc instruction indices awaiting fn.Entry
}

type loopPatch struct {
	breaks    []int
	continues []int
}

// Compile type-checks and lowers chunk to a flat bytecode Program. Any
// compile-time problems are returned as an ErrorList (via err); the
// returned Program is still populated as far as compilation got, for tools
// that want to disassemble a partially-valid chunk.
func Compile(chunk *ast.Chunk) (*Program, error) {
	c := &Compiler{
		symbols:  symbols.NewTable(),
		prog:     &Program{FuncEntries: map[int]*FuncInfo{}},
		compiled: map[*symbols.Func]bool{},
		pending:  map[*symbols.Func][]int{},
	}
	c.predeclare(chunk)
	for _, d := range chunk.Decls {
		c.compileStmt(d)
	}
	c.prog.NumGlobals = c.symbols.NumGlobals()
	c.errs.Sort()
	return c.prog, c.errs.Err()
}

// --- predeclaration (forward references, recursion, method namespaces) ---

// isBuiltinTypeName reports whether name is one of the type names
// resolveASTType recognizes without consulting the class table.
func isBuiltinTypeName(name string) bool {
	switch name {
	case "Int", "Uint", "Float", "Str", "Bool", "Void", "Any", "List":
		return true
	default:
		return false
	}
}

func (c *Compiler) predeclare(chunk *ast.Chunk) {
	for _, d := range chunk.Decls {
		if cd, ok := d.(*ast.ClassDef); ok {
			if isBuiltinTypeName(cd.Name) {
				c.errs.Add(ClassRedefinition, cd.Start, "class %q redefines a built-in type", cd.Name)
				continue
			}
			if !c.symbols.DefineClass(&symbols.Class{Name: cd.Name}) {
				c.errs.Add(ClassRedefinition, cd.Start, "class %q already defined", cd.Name)
			}
		}
	}
	for _, d := range chunk.Decls {
		switch n := d.(type) {
		case *ast.FuncDef:
			c.predeclareFunc(n)
		case *ast.ClassDef:
			c.fillClassMembers(n)
			for _, m := range n.Methods {
				c.predeclareFunc(m)
			}
		}
	}
}

func (c *Compiler) fillClassMembers(n *ast.ClassDef) {
	class, ok := c.symbols.LookupClass(n.Name)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(n.Members))
	for i, p := range n.Members {
		ty := c.resolveASTType(p.Type)
		if ty.Kind == types.Void {
			c.errs.Add(VoidMember, p.Start, "member %q cannot be declared Void", p.Name)
		}
		if seen[p.Name] {
			c.errs.Add(DuplicateMember, p.Start, "duplicate member %q on class %q", p.Name, n.Name)
			continue
		}
		seen[p.Name] = true
		class.Members = append(class.Members, &symbols.Member{Index: i, Name: p.Name, Type: ty})
	}
}

func (c *Compiler) funcArgTypes(n *ast.FuncDef) ([]*types.Type, []string) {
	argTypes := make([]*types.Type, 0, len(n.Args)+1)
	argNames := make([]string, 0, len(n.Args)+1)
	if n.Namespace != "" {
		argTypes = append(argTypes, types.CustomNamed(n.Namespace))
		argNames = append(argNames, "self")
	}
	for _, p := range n.Args {
		argTypes = append(argTypes, c.resolveASTType(p.Type))
		argNames = append(argNames, p.Name)
	}
	return argTypes, argNames
}

func (c *Compiler) funcRetType(n *ast.FuncDef) *types.Type {
	if n.RetType == nil {
		return types.TVoid
	}
	return c.resolveASTType(n.RetType)
}

func (c *Compiler) predeclareFunc(n *ast.FuncDef) {
	argTypes, argNames := c.funcArgTypes(n)
	fn := &symbols.Func{
		Name:      n.Name,
		Namespace: n.Namespace,
		Args:      argTypes,
		ArgNames:  argNames,
		RetType:   c.funcRetType(n),
		IsUnsafe:  n.IsUnsafe,
	}
	if !c.symbols.DefineFunc(fn) {
		c.errs.Add(Redefinition, n.Start, "function %q already defined for these argument types", n.Name)
	}
}

// resolveASTType converts a parsed type annotation into a static Type,
// recording UnknownNamespace if it names neither a builtin nor a
// (pre-registered) class.
func (c *Compiler) resolveASTType(t *ast.Type) *types.Type {
	if t == nil {
		return types.TAny
	}
	switch t.Name {
	case "Int":
		return types.TInt
	case "Uint":
		return types.TUint
	case "Float":
		return types.TFloat
	case "Str":
		return types.TStr
	case "Bool":
		return types.TBool
	case "Void":
		return types.TVoid
	case "Any":
		return types.TAny
	case "List":
		return types.ListOf(c.resolveASTType(t.Elem))
	default:
		if _, ok := c.symbols.LookupClass(t.Name); ok {
			return types.CustomNamed(t.Name)
		}
		c.errs.Add(UnknownNamespace, t.Start, "unknown type %q", t.Name)
		return types.TAny
	}
}

// --- statements ---

func (c *Compiler) compileStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.VarDef:
		c.compileVarDef(n)
	case *ast.FuncDef:
		c.compileFuncDef(n)
	case *ast.ClassDef:
		for _, m := range n.Methods {
			c.compileFuncDef(m)
		}
	case *ast.ExprStmt:
		c.compileExprStmt(n)
	case *ast.Assign:
		c.compileAssign(n)
	case *ast.IfStmt:
		c.compileIf(n)
	case *ast.WhileLoop:
		c.compileWhile(n)
	case *ast.ForLoop:
		c.compileFor(n)
	case *ast.RetStmt:
		c.compileReturn(n)
	case *ast.BreakStmt:
		c.compileBreak(n)
	case *ast.ContStmt:
		c.compileContinue(n)
	case *ast.TryCatch:
		c.compileTryCatch(n)
	case *ast.Throw:
		c.compileThrow(n)
	case *ast.BadStmt:
		// parser already recorded the underlying problem
	}
}

func (c *Compiler) compileBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		c.compileStmt(s)
	}
}

func (c *Compiler) compileVarDef(n *ast.VarDef) {
	declared := c.resolveASTType(n.Type)
	if n.Type == nil {
		declared = c.evalType(n.Value, nil)
	}
	valTy := c.compileExpr(n.Value)
	if !types.ImplicitlyEq(declared, valTy) {
		start, _ := n.Span()
		c.errs.Add(ArgTypeMismatch, start, "cannot assign %s to %s %q", valTy, declared, n.Name)
	}
	c.emitNumericCast(declared, valTy)

	if scope := c.symbols.CurrentScope(); scope != nil {
		l, created := scope.DefineLocal(n.Name, declared, n.IsConst)
		if !created {
			c.errs.Add(Redefinition, n.Start, "local %q already defined", n.Name)
		}
		c.prog.Emit(IInt(SetLocal, int64(l.Slot)))
		return
	}
	g, created := c.symbols.DefineGlobal(n.Name, declared, n.IsConst)
	if !created {
		c.errs.Add(Redefinition, n.Start, "global %q already defined", n.Name)
	}
	c.prog.Emit(IInt(SetGlobal, int64(g.Slot)))
}

func (c *Compiler) compileExprStmt(n *ast.ExprStmt) {
	switch x := n.X.(type) {
	case *ast.FuncCall:
		ty := c.compileFuncCall(c.namespace, x)
		if ty.Kind != types.Void && ty.Kind != types.Any {
			start, _ := n.Span()
			c.errs.Add(NonVoidAsStmt, start, "result of %q is discarded", x.Name)
		}
	case *ast.AttrRes:
		ty := c.compileAttrRes(x)
		if ty.Kind != types.Void && ty.Kind != types.Any {
			start, _ := n.Span()
			c.errs.Add(NonVoidAsStmt, start, "expression result is discarded")
		}
	default:
		start, _ := n.Span()
		c.errs.Add(NonVoidAsStmt, start, "only a function or method call may be used as a statement")
	}
}

func (c *Compiler) compileAssign(n *ast.Assign) {
	isAug := n.Op.IsAugBinop()
	underlying := n.Op.BinOp()

	switch lhs := n.Lhs.(type) {
	case *ast.VarCall:
		c.compileAssignVar(n, lhs, underlying, isAug)
	case *ast.AttrRes:
		c.compileAssignAttr(n, lhs, underlying, isAug)
	default:
		start, _ := n.Span()
		c.errs.Add(UnknownName, start, "invalid assignment target")
	}
}

func (c *Compiler) compileAssignVar(n *ast.Assign, lhs *ast.VarCall, underlying token.Token, isAug bool) {
	start, _ := n.Span()

	scope := c.symbols.CurrentScope()
	var local *symbols.Local
	var arg *symbols.Arg
	var global *symbols.Global
	if scope != nil {
		if l, ok := scope.LookupLocal(lhs.Name); ok {
			local = l
		} else if a, ok := scope.LookupArg(lhs.Name); ok {
			arg = a
		}
	}
	if local == nil && arg == nil {
		if g, ok := c.symbols.LookupGlobal(lhs.Name); ok {
			global = g
			if scope != nil {
				c.errs.Add(MutateGlobalFromFunc, start, "cannot assign to global %q from inside a function", lhs.Name)
			}
		}
	}
	if local == nil && arg == nil && global == nil {
		c.errs.Add(UnknownName, start, "unknown variable %q", lhs.Name)
		c.compileExpr(n.Rhs)
		return
	}
	if arg != nil {
		c.errs.Add(MutateConst, start, "cannot assign to argument %q", lhs.Name)
		c.compileExpr(n.Rhs)
		return
	}
	if local != nil && local.IsConst {
		c.errs.Add(MutateConst, start, "cannot assign to const %q", lhs.Name)
	}
	if global != nil && global.IsConst {
		c.errs.Add(MutateConst, start, "cannot assign to const %q", lhs.Name)
	}

	declared := types.TAny
	switch {
	case local != nil:
		declared = local.Type
	case global != nil:
		declared = global.Type
	case arg != nil:
		declared = arg.Type
	}

	if isAug {
		lhsTy := c.evalType(lhs, nil)
		rhsTy := c.evalType(n.Rhs, nil)
		op, ok := binOpFromToken(underlying)
		if !ok {
			c.compileExpr(lhs)
			c.compileExpr(n.Rhs)
			c.errs.Add(InvalidOperator, start, "invalid compound-assignment operator")
			return
		}
		combined, err := types.BinOpType(op, lhsTy, rhsTy)
		if err != nil {
			c.compileExpr(lhs)
			c.compileExpr(n.Rhs)
			c.errs.Add(InvalidOperator, start, "%s", err)
			return
		}
		c.compileExpr(lhs)
		c.emitNumericCast(combined, lhsTy)
		c.compileExpr(n.Rhs)
		c.emitNumericCast(combined, rhsTy)
		c.emitBinInstr(op)
		c.emitNumericCast(declared, combined)
	} else {
		rhsTy := c.compileExpr(n.Rhs)
		if !types.ImplicitlyEq(declared, rhsTy) {
			c.errs.Add(ArgTypeMismatch, start, "cannot assign %s to %q of type %s", rhsTy, lhs.Name, declared)
		}
		c.emitNumericCast(declared, rhsTy)
	}

	switch {
	case local != nil:
		c.prog.Emit(IInt(SetLocal, int64(local.Slot)))
	case global != nil:
		c.prog.Emit(IInt(SetGlobal, int64(global.Slot)))
	}
}

func (c *Compiler) compileAssignAttr(n *ast.Assign, lhs *ast.AttrRes, underlying token.Token, isAug bool) {
	start, _ := n.Span()
	_, member := c.compileAttrChainPrefix(lhs)
	if member == nil {
		c.compileExpr(n.Rhs)
		return
	}

	if isAug {
		c.prog.Emit(I(Dup)) // keep the receiver on the stack for the SetAttr below
		c.prog.Emit(IInt(GetAttr, int64(member.Index)))
		rhsTy := c.evalType(n.Rhs, nil)
		op, ok := binOpFromToken(underlying)
		if !ok {
			c.compileExpr(n.Rhs)
			c.errs.Add(InvalidOperator, start, "invalid compound-assignment operator")
			return
		}
		combined, err := types.BinOpType(op, member.Type, rhsTy)
		if err != nil {
			c.compileExpr(n.Rhs)
			c.errs.Add(InvalidOperator, start, "%s", err)
			return
		}
		c.emitNumericCast(combined, member.Type)
		c.compileExpr(n.Rhs)
		c.emitNumericCast(combined, rhsTy)
		c.emitBinInstr(op)
		c.emitNumericCast(member.Type, combined)
	} else {
		rhsTy := c.compileExpr(n.Rhs)
		if !types.ImplicitlyEq(member.Type, rhsTy) {
			c.errs.Add(ArgTypeMismatch, start, "cannot assign %s to member %q of type %s", rhsTy, member.Name, member.Type)
		}
		c.emitNumericCast(member.Type, rhsTy)
	}
	c.prog.Emit(IInt(SetAttr, int64(member.Index)))
}

// compileAttrChainPrefix compiles every link of an AttrRes except the last
// (which names the member being assigned), leaving the receiver on the
// stack, and returns the receiver's static type plus the resolved member.
func (c *Compiler) compileAttrChainPrefix(n *ast.AttrRes) (*types.Type, *symbols.Member) {
	if len(n.Chain) < 2 {
		start, _ := n.Span()
		c.errs.Add(UnknownMember, start, "assignment target must name a member")
		return types.TAny, nil
	}
	prefix := &ast.AttrRes{Chain: n.Chain[:len(n.Chain)-1]}
	parentTy := c.compileAttrRes(prefix)
	last, ok := n.Chain[len(n.Chain)-1].(*ast.VarCall)
	if !ok {
		start, _ := n.Span()
		c.errs.Add(UnknownMember, start, "assignment target must name a member, not a call")
		return parentTy, nil
	}
	class, ok := c.symbols.LookupClass(parentTy.Name)
	if !ok {
		start, _ := n.Span()
		c.errs.Add(UnknownNamespace, start, "unknown namespace %q", parentTy)
		return parentTy, nil
	}
	member := class.Member(last.Name)
	if member == nil {
		start, _ := n.Span()
		c.errs.Add(UnknownMember, start, "unknown member %q on %s", last.Name, parentTy)
		return parentTy, nil
	}
	return parentTy, member
}

// --- branching ---

func (c *Compiler) compileIf(n *ast.IfStmt) {
	var jmpEnds []int

	branch := func(cond ast.Expr, body *ast.Block) {
		condTy := c.compileExpr(cond)
		if condTy.Kind != types.Bool && condTy.Kind != types.Any {
			start, _ := cond.Span()
			c.errs.Add(InvalidOperator, start, "condition must be Bool, got %s", condTy)
		}
		ifIdx := c.prog.Emit(IInt(If, 0))
		c.compileBlock(body)
		jmpIdx := c.prog.Emit(IInt(Jmp, 0))
		jmpEnds = append(jmpEnds, jmpIdx)
		after := c.prog.Len()
		c.prog.Code[ifIdx].Int = int64(after - (ifIdx + 1))
	}

	branch(n.Cond, n.Body)
	for _, e := range n.Elifs {
		branch(e.Cond, e.Body)
	}
	if n.Else != nil {
		c.compileBlock(n.Else)
	} else {
		// Keep every arm's Jmp landing on a real instruction even when there
		// is no else body, so disassembly always shows a branch target.
		c.prog.Emit(I(Nop))
	}
	end := c.prog.Len()
	for _, j := range jmpEnds {
		c.prog.Code[j].Int = int64(end - (j + 1))
	}
}

func (c *Compiler) compileWhile(n *ast.WhileLoop) {
	start := c.prog.Len()
	condTy := c.compileExpr(n.Cond)
	if condTy.Kind != types.Bool && condTy.Kind != types.Any {
		p, _ := n.Cond.Span()
		c.errs.Add(InvalidOperator, p, "condition must be Bool, got %s", condTy)
	}
	ifIdx := c.prog.Emit(IInt(If, 0))

	c.loops = append(c.loops, &loopPatch{})
	c.compileBlock(n.Body)
	lp := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	backIdx := c.prog.Emit(IInt(Jmp, 0))
	c.prog.Code[backIdx].Int = int64(start - (backIdx + 1))

	end := c.prog.Len()
	c.prog.Code[ifIdx].Int = int64(end - (ifIdx + 1))
	for _, b := range lp.breaks {
		c.prog.Code[b].Int = int64(end - (b + 1))
	}
	for _, cont := range lp.continues {
		c.prog.Code[cont].Int = int64(start - (cont + 1))
	}
}

// compileFor desugars `for x in xs: body` into an index-counted while loop
// over the list's elements, since the instruction set has no dedicated
// iterator opcode.
func (c *Compiler) compileFor(n *ast.ForLoop) {
	iterTy := c.compileExpr(n.Iterable)
	if iterTy.Kind != types.List && iterTy.Kind != types.Any {
		p, _ := n.Iterable.Span()
		c.errs.Add(InvalidOperator, p, "for-in requires a List, got %s", iterTy)
	}
	elemTy := types.TAny
	if iterTy.Kind == types.List {
		elemTy = iterTy.Elem
	}

	scope := c.symbols.CurrentScope()
	if scope == nil {
		p, _ := n.Span()
		c.errs.Add(UnknownName, p, "for loop requires a function or block scope")
		return
	}

	iterable, _ := scope.DefineLocal(".iter"+n.IterName, iterTy, true)
	c.prog.Emit(IInt(SetLocal, int64(iterable.Slot)))

	idx, _ := scope.DefineLocal(".idx"+n.IterName, types.TInt, false)
	c.prog.Emit(IInt(ConstI, 0))
	c.prog.Emit(IInt(SetLocal, int64(idx.Slot)))

	elem, _ := scope.DefineLocal(n.IterName, elemTy, false)

	start := c.prog.Len()
	c.prog.Emit(IInt(GetLocal, int64(idx.Slot)))
	c.prog.Emit(IInt(GetLocal, int64(iterable.Slot)))
	c.prog.Emit(I(ListLen))
	c.prog.Emit(I(Lt))
	ifIdx := c.prog.Emit(IInt(If, 0))

	c.prog.Emit(IInt(GetLocal, int64(iterable.Slot)))
	c.prog.Emit(IInt(GetLocal, int64(idx.Slot)))
	c.prog.Emit(I(ListIndex))
	c.prog.Emit(IInt(SetLocal, int64(elem.Slot)))

	c.loops = append(c.loops, &loopPatch{})
	c.compileBlock(n.Body)
	lp := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	contTarget := c.prog.Len()
	c.prog.Emit(IInt(GetLocal, int64(idx.Slot)))
	c.prog.Emit(IInt(ConstI, 1))
	c.prog.Emit(I(Add))
	c.prog.Emit(IInt(SetLocal, int64(idx.Slot)))

	backIdx := c.prog.Emit(IInt(Jmp, 0))
	c.prog.Code[backIdx].Int = int64(start - (backIdx + 1))

	end := c.prog.Len()
	c.prog.Code[ifIdx].Int = int64(end - (ifIdx + 1))
	for _, b := range lp.breaks {
		c.prog.Code[b].Int = int64(end - (b + 1))
	}
	for _, cont := range lp.continues {
		c.prog.Code[cont].Int = int64(contTarget - (cont + 1))
	}
}

func (c *Compiler) compileBreak(n *ast.BreakStmt) {
	if len(c.loops) == 0 {
		c.errs.Add(BreakOutsideLoop, n.Start, "break outside a loop")
		return
	}
	idx := c.prog.Emit(IInt(Jmp, 0))
	lp := c.loops[len(c.loops)-1]
	lp.breaks = append(lp.breaks, idx)
}

func (c *Compiler) compileContinue(n *ast.ContStmt) {
	if len(c.loops) == 0 {
		c.errs.Add(ContinueOutsideLoop, n.Start, "continue outside a loop")
		return
	}
	idx := c.prog.Emit(IInt(Jmp, 0))
	lp := c.loops[len(c.loops)-1]
	lp.continues = append(lp.continues, idx)
}

// --- functions, returns ---

func (c *Compiler) compileReturn(n *ast.RetStmt) {
	if c.symbols.CurrentScope() == nil {
		c.errs.Add(ReturnOutsideFunc, n.Start, "return outside a function")
	}
	if n.Value == nil {
		c.prog.Emit(I(ReturnVoid))
		return
	}
	c.compileExpr(n.Value)
	c.prog.Emit(I(Return))
}

func (c *Compiler) compileFuncDef(n *ast.FuncDef) {
	argTypes, _ := c.funcArgTypes(n)
	fn, ok := c.symbols.LookupFuncExact(n.Namespace, n.Name, argTypes)
	if !ok {
		// predeclare failed to register this exact signature (duplicate);
		// still compile the body so later diagnostics remain meaningful.
		fn = &symbols.Func{Name: n.Name, Namespace: n.Namespace, Args: argTypes, RetType: c.funcRetType(n), IsUnsafe: n.IsUnsafe}
	}

	createIdx := c.prog.Emit(IInt(CreateFunc, 0))
	entry := c.prog.Len()
	fn.Entry = entry

	scope := c.symbols.PushScope()
	argIdx := 0
	if n.Namespace != "" {
		scope.DefineArg("self", 0, types.CustomNamed(n.Namespace))
		argIdx = 1
	}
	for _, p := range n.Args {
		scope.DefineArg(p.Name, argIdx, c.resolveASTType(p.Type))
		argIdx++
	}

	prevNamespace := c.namespace
	c.namespace = n.Namespace
	prevUnsafe := c.inUnsafe
	c.inUnsafe = n.IsUnsafe

	c.compileBlock(n.Body)

	retTy := c.funcRetType(n)
	if retTy.Kind == types.Void {
		c.prog.Emit(I(ReturnVoid))
	} else if !blockEndsInReturn(n.Body) {
		c.errs.Add(MissingReturn, n.End, "function %q does not return on every path", n.Name)
		c.prog.Emit(I(ReturnVoid))
	}

	c.inUnsafe = prevUnsafe
	c.namespace = prevNamespace
	c.symbols.PopScope()

	after := c.prog.Len()
	c.prog.Code[createIdx].Int = int64(after - (createIdx + 1))

	c.prog.FuncEntries[entry] = &FuncInfo{Name: n.Name, Namespace: n.Namespace, NumArgs: len(fn.Args), IsUnsafe: n.IsUnsafe}

	c.compiled[fn] = true
	for _, idx := range c.pending[fn] {
		c.prog.Code[idx].Int = int64(entry)
	}
	delete(c.pending, fn)
}

// blockEndsInReturn reports whether every path out of b ends in a statement
// that itself unconditionally leaves the function (return/throw on the last
// statement, or an if/else or try/catch whose every arm does); a trailing
// break/continue does not count.
func blockEndsInReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	last := b.Stmts[len(b.Stmts)-1]
	switch n := last.(type) {
	case *ast.RetStmt:
		return true
	case *ast.IfStmt:
		if n.Else == nil {
			return false
		}
		if !blockEndsInReturn(n.Body) || !blockEndsInReturn(n.Else) {
			return false
		}
		for _, e := range n.Elifs {
			if !blockEndsInReturn(e.Body) {
				return false
			}
		}
		return true
	case *ast.TryCatch:
		return blockEndsInReturn(n.TryBody) && blockEndsInReturn(n.CatchBody)
	default:
		return last.BlockEnding() && !isBreakOrContinue(last)
	}
}

func isBreakOrContinue(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.BreakStmt, *ast.ContStmt:
		return true
	default:
		return false
	}
}

func (c *Compiler) emitCall(fn *symbols.Func) {
	idx := c.prog.Emit(IInt(CallFunc, int64(fn.Entry)))
	if !c.compiled[fn] {
		c.pending[fn] = append(c.pending[fn], idx)
	}
}

// --- exceptions ---

func (c *Compiler) compileTryCatch(n *ast.TryCatch) {
	if c.inTry {
		c.errs.Add(NestedTry, n.Start, "try blocks cannot be nested")
	}
	prevInTry := c.inTry
	c.inTry = true
	prevInCatchForTry := c.inCatch
	c.inCatch = false // the try body itself is not a catch body, even nested in one

	tryIdx := c.prog.Emit(IInt(TryScope, 0))
	c.compileBlock(n.TryBody)
	c.inTry = prevInTry
	c.inCatch = prevInCatchForTry

	afterTry := c.prog.Len()
	c.prog.Code[tryIdx].Int = int64(afterTry - (tryIdx + 1))

	catchIdx := c.prog.Emit(IInt(CatchJmp, 0))

	if scope := c.symbols.CurrentScope(); scope != nil {
		l, _ := scope.DefineLocal(n.ExceptionVar, types.TStr, false)
		c.prog.Emit(IInt(SetLocal, int64(l.Slot)))
	} else {
		g, _ := c.symbols.DefineGlobal(n.ExceptionVar, types.TStr, false)
		c.prog.Emit(IInt(SetGlobal, int64(g.Slot)))
	}
	prevInCatch := c.inCatch
	c.inCatch = true
	c.compileBlock(n.CatchBody)
	c.inCatch = prevInCatch

	afterCatch := c.prog.Len()
	c.prog.Code[catchIdx].Int = int64(afterCatch - (catchIdx + 1))
}

func (c *Compiler) compileThrow(n *ast.Throw) {
	switch {
	case c.inCatch:
		c.errs.Add(ThrowInSafeContext, n.Start, "throw is not allowed inside a catch body")
	case !c.inUnsafe && !c.inTry:
		c.errs.Add(ThrowInSafeContext, n.Start, "throw requires an unsafe function or a try block")
	}
	ty := c.compileExpr(n.Value)
	if ty.Kind != types.Str && ty.Kind != types.Any {
		p, _ := n.Span()
		c.errs.Add(InvalidOperator, p, "throw requires a Str value, got %s", ty)
	}
	c.prog.Emit(I(ThrowException))
}

// --- expressions ---

func (c *Compiler) compileExpr(expr ast.Expr) *types.Type {
	switch n := expr.(type) {
	case *ast.IntLit:
		c.prog.Emit(IInt(ConstI, n.Value))
		return types.TInt
	case *ast.UintLit:
		c.prog.Emit(IUint(n.Value))
		return types.TUint
	case *ast.FloatLit:
		c.prog.Emit(IFloat(n.Value))
		return types.TFloat
	case *ast.StrLit:
		c.prog.Emit(IStr(ConstS, n.Value))
		return types.TStr
	case *ast.BoolLit:
		c.prog.Emit(IBool(n.Value))
		return types.TBool
	case *ast.VarCall:
		return c.compileVarCall(n)
	case *ast.FuncCall:
		return c.compileFuncCall(c.namespace, n)
	case *ast.BinOpr:
		return c.compileBinOpr(n)
	case *ast.UnaryOpr:
		return c.compileUnaryOpr(n)
	case *ast.ListLit:
		return c.compileListLit(n)
	case *ast.AttrRes:
		return c.compileAttrRes(n)
	case *ast.BadExpr:
		return types.TAny
	default:
		return types.TAny
	}
}

func (c *Compiler) compileVarCall(n *ast.VarCall) *types.Type {
	if scope := c.symbols.CurrentScope(); scope != nil {
		if l, ok := scope.LookupLocal(n.Name); ok {
			c.prog.Emit(IInt(GetLocal, int64(l.Slot)))
			return l.Type
		}
		if a, ok := scope.LookupArg(n.Name); ok {
			c.prog.Emit(IInt(GetArg, int64(a.Index)))
			return a.Type
		}
	}
	if g, ok := c.symbols.LookupGlobal(n.Name); ok {
		c.prog.Emit(IInt(GetGlobal, int64(g.Slot)))
		return g.Type
	}
	start, _ := n.Span()
	c.errs.Add(UnknownName, start, "unknown variable %q", n.Name)
	return types.TAny
}

func (c *Compiler) compileFuncCall(namespace string, n *ast.FuncCall) *types.Type {
	// A call whose name matches a registered class, outside of any method
	// namespace qualification, constructs an instance rather than invoking a
	// function: Point(1, 2) builds a Point from its declared members.
	if namespace == "" {
		if class, ok := c.symbols.LookupClass(n.Name); ok {
			return c.compileConstructorCall(class, n)
		}
		if ty, ok := c.compileBuiltinCall(n); ok {
			return ty
		}
	}

	peekTypes := make([]*types.Type, len(n.Args))
	for i, a := range n.Args {
		peekTypes[i] = c.evalType(a, nil)
	}
	fn, ambiguous := c.symbols.ResolveFunc(namespace, n.Name, peekTypes)
	start, _ := n.Span()

	if ambiguous {
		c.errs.Add(AmbiguousOverload, start, "ambiguous call to %q", n.Name)
		for _, a := range n.Args {
			c.compileExpr(a)
		}
		return types.TAny
	}
	if fn == nil {
		c.errs.Add(UnknownFunc, start, "unknown function %q for the given argument types", n.Name)
		for _, a := range n.Args {
			c.compileExpr(a)
		}
		return types.TAny
	}

	if c.inCatch && fn.IsUnsafe {
		c.errs.Add(ThrowInSafeContext, start, "cannot call unsafe function %q from inside a catch body", n.Name)
	}

	for i, a := range n.Args {
		argTy := c.compileExpr(a)
		c.emitNumericCast(fn.Args[i], argTy)
	}
	c.emitCall(fn)

	if fn.RetType.Kind == types.Void {
		c.errs.Add(VoidInExpr, start, "function %q returns Void and cannot be used in an expression", n.Name)
		return types.TAny
	}
	return fn.RetType
}

// compileBuiltinCall recognizes the handful of always-available functions
// that are VM opcodes rather than ordinary symbols.Func entries (print,
// assert), since they have no bytecode body to jump to.
func (c *Compiler) compileBuiltinCall(n *ast.FuncCall) (*types.Type, bool) {
	start, _ := n.Span()
	switch n.Name {
	case "print":
		if len(n.Args) != 1 {
			c.errs.Add(WrongArity, start, "print expects 1 argument, got %d", len(n.Args))
			for _, a := range n.Args {
				c.compileExpr(a)
			}
			return types.TVoid, true
		}
		c.compileExpr(n.Args[0])
		c.prog.Emit(I(Print))
		return types.TVoid, true

	case "assert":
		if len(n.Args) != 2 {
			c.errs.Add(WrongArity, start, "assert expects 2 arguments, got %d", len(n.Args))
			for _, a := range n.Args {
				c.compileExpr(a)
			}
			return types.TVoid, true
		}
		c.compileExpr(n.Args[0])
		c.compileExpr(n.Args[1])
		c.prog.Emit(I(Assert))
		return types.TVoid, true

	default:
		return nil, false
	}
}

func (c *Compiler) compileConstructorCall(class *symbols.Class, n *ast.FuncCall) *types.Type {
	start, _ := n.Span()
	if len(n.Args) != len(class.Members) {
		c.errs.Add(WrongArity, start, "%s requires %d member values, got %d", class.Name, len(class.Members), len(n.Args))
	}
	for i, a := range n.Args {
		argTy := c.compileExpr(a)
		if i < len(class.Members) {
			c.emitNumericCast(class.Members[i].Type, argTy)
			if !types.ImplicitlyEq(class.Members[i].Type, argTy) {
				c.errs.Add(ArgTypeMismatch, start, "member %q expects %s, got %s", class.Members[i].Name, class.Members[i].Type, argTy)
			}
		}
	}
	c.prog.Emit(IStrInt(MakeObject, class.Name, int64(len(n.Args))))
	return types.CustomNamed(class.Name)
}

func (c *Compiler) compileBinOpr(n *ast.BinOpr) *types.Type {
	leftTy := c.evalType(n.Left, nil)
	rightTy := c.evalType(n.Right, nil)
	op, ok := binOpFromToken(n.Op)
	start, _ := n.Span()
	if !ok {
		c.errs.Add(InvalidOperator, start, "unsupported operator %s", n.Op)
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		return types.TAny
	}

	resultTy, err := types.BinOpType(op, leftTy, rightTy)
	if err != nil {
		c.errs.Add(InvalidOperator, start, "%s", err)
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		return types.TAny
	}

	c.compileExpr(n.Left)
	c.emitNumericCast(resultTy, leftTy)
	c.compileExpr(n.Right)
	c.emitNumericCast(resultTy, rightTy)
	c.emitBinInstr(op)
	return resultTy
}

func (c *Compiler) compileUnaryOpr(n *ast.UnaryOpr) *types.Type {
	operandTy := c.compileExpr(n.Operand)
	op, ok := unaryOpFromToken(n.Op)
	start, _ := n.Span()
	if !ok {
		c.errs.Add(InvalidOperator, start, "unsupported unary operator %s", n.Op)
		return types.TAny
	}
	ty, err := types.UnaryOpType(op, operandTy)
	if err != nil {
		c.errs.Add(InvalidOperator, start, "%s", err)
		return types.TAny
	}
	switch op {
	case types.Neg:
		if operandTy.Kind == types.Uint {
			c.prog.Emit(I(CastI))
		}
		c.prog.Emit(I(Neg))
	case types.Not:
		c.prog.Emit(I(Not))
	}
	return ty
}

func (c *Compiler) compileListLit(n *ast.ListLit) *types.Type {
	elemTy := types.TAny
	for i, el := range n.Elements {
		ty := c.compileExpr(el)
		switch {
		case i == 0:
			elemTy = ty
		case !types.ImplicitlyEq(elemTy, ty) && !types.ImplicitlyEq(ty, elemTy):
			start, _ := n.Span()
			c.errs.Add(IncoherentList, start, "list element of type %s does not match previous element type %s", ty, elemTy)
		}
	}
	c.prog.Emit(IInt(MakeList, int64(len(n.Elements))))
	return types.ListOf(elemTy)
}

func (c *Compiler) compileAttrRes(n *ast.AttrRes) *types.Type {
	var parent *types.Type
	for i, elem := range n.Chain {
		switch link := elem.(type) {
		case *ast.VarCall:
			if i == 0 {
				parent = c.compileVarCall(link)
				continue
			}
			class, ok := c.symbols.LookupClass(parent.Name)
			if !ok {
				start, _ := link.Span()
				c.errs.Add(UnknownNamespace, start, "unknown namespace %q", parent)
				parent = types.TAny
				continue
			}
			member := class.Member(link.Name)
			if member == nil {
				start, _ := link.Span()
				c.errs.Add(UnknownMember, start, "unknown member %q on %s", link.Name, parent)
				parent = types.TAny
				continue
			}
			c.prog.Emit(IInt(GetAttr, int64(member.Index)))
			parent = member.Type

		case *ast.FuncCall:
			namespace := c.namespace
			if i > 0 {
				namespace = parent.Name
			}
			parent = c.compileFuncCall(namespace, link)
		}
	}
	return parent
}

// --- shared helpers ---

func (c *Compiler) emitNumericCast(to, from *types.Type) {
	if !types.IsNumeric(to) || !types.IsNumeric(from) || types.Equal(to, from) {
		return
	}
	op, ok := types.Cast(to, from)
	if !ok || op == "" {
		return
	}
	switch op {
	case "CastI":
		c.prog.Emit(I(CastI))
	case "CastF":
		c.prog.Emit(I(CastF))
	case "CastU":
		c.prog.Emit(I(CastU))
	}
}

func (c *Compiler) emitBinInstr(op types.BinOp) {
	switch op {
	case types.Add:
		c.prog.Emit(I(Add))
	case types.Sub:
		c.prog.Emit(I(Sub))
	case types.Mul:
		c.prog.Emit(I(Mul))
	case types.Div:
		c.prog.Emit(I(Div))
	case types.Mod:
		c.prog.Emit(I(Mod))
	case types.And:
		c.prog.Emit(I(And))
	case types.Or:
		c.prog.Emit(I(Or))
	case types.Lt:
		c.prog.Emit(I(Lt))
	case types.Gt:
		c.prog.Emit(I(Gt))
	case types.LtEq:
		c.prog.Emit(I(LtEq))
	case types.GtEq:
		c.prog.Emit(I(GtEq))
	case types.EqEq:
		c.prog.Emit(I(Eq))
	case types.NotEq:
		c.prog.Emit(I(Eq))
		c.prog.Emit(I(Not))
	}
}

func binOpFromToken(tokOp interface{ String() string }) (types.BinOp, bool) {
	switch tokOp.String() {
	case "+":
		return types.Add, true
	case "-":
		return types.Sub, true
	case "*":
		return types.Mul, true
	case "/":
		return types.Div, true
	case "%":
		return types.Mod, true
	case "&&":
		return types.And, true
	case "||":
		return types.Or, true
	case "<":
		return types.Lt, true
	case ">":
		return types.Gt, true
	case "<=":
		return types.LtEq, true
	case ">=":
		return types.GtEq, true
	case "==":
		return types.EqEq, true
	case "!=":
		return types.NotEq, true
	default:
		return 0, false
	}
}

func unaryOpFromToken(tokOp interface{ String() string }) (types.UnaryOp, bool) {
	switch tokOp.String() {
	case "-":
		return types.Neg, true
	case "!":
		return types.Not, true
	default:
		return 0, false
	}
}
