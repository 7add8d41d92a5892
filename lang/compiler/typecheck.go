package compiler

import (
	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/types"
)

// evalType computes the static type of expr without emitting any bytecode.
// The compiler uses it to peek at a subexpression's type before deciding how
// to emit a sibling expression (e.g. which operand of a binary operator
// needs a widening cast), so that order-sensitive emission never has to
// un-emit anything. errs may be nil, in which case problems are silently
// swallowed — that mode exists precisely for this peeking use, where the
// same subexpression gets walked again for real by compileExpr, which is
// where its diagnostics actually belong.
func (c *Compiler) evalType(expr ast.Expr, errs *ErrorList) *types.Type {
	switch n := expr.(type) {
	case *ast.IntLit:
		return types.TInt
	case *ast.UintLit:
		return types.TUint
	case *ast.FloatLit:
		return types.TFloat
	case *ast.StrLit:
		return types.TStr
	case *ast.BoolLit:
		return types.TBool

	case *ast.VarCall:
		if ty, ok := c.lookupVarType(n.Name); ok {
			return ty
		}
		if errs != nil {
			start, _ := n.Span()
			errs.Add(UnknownName, start, "unknown variable %q", n.Name)
		}
		return types.TAny

	case *ast.FuncCall:
		if c.namespace == "" {
			if class, ok := c.symbols.LookupClass(n.Name); ok {
				for _, a := range n.Args {
					c.evalType(a, errs)
				}
				return types.CustomNamed(class.Name)
			}
		}
		argTypes := make([]*types.Type, len(n.Args))
		for i, a := range n.Args {
			argTypes[i] = c.evalType(a, errs)
		}
		fn, ambiguous := c.symbols.ResolveFunc(c.namespace, n.Name, argTypes)
		if ambiguous {
			if errs != nil {
				start, _ := n.Span()
				errs.Add(AmbiguousOverload, start, "ambiguous call to %q", n.Name)
			}
			return types.TAny
		}
		if fn == nil {
			if errs != nil {
				start, _ := n.Span()
				errs.Add(UnknownFunc, start, "unknown function %q for the given argument types", n.Name)
			}
			return types.TAny
		}
		return fn.RetType

	case *ast.BinOpr:
		left := c.evalType(n.Left, errs)
		right := c.evalType(n.Right, errs)
		op, ok := binOpFromToken(n.Op)
		if !ok {
			return types.TAny
		}
		ty, err := types.BinOpType(op, left, right)
		if err != nil {
			return types.TAny
		}
		return ty

	case *ast.UnaryOpr:
		operand := c.evalType(n.Operand, errs)
		op, ok := unaryOpFromToken(n.Op)
		if !ok {
			return types.TAny
		}
		ty, err := types.UnaryOpType(op, operand)
		if err != nil {
			return types.TAny
		}
		return ty

	case *ast.ListLit:
		if len(n.Elements) == 0 {
			return types.ListOf(types.TAny)
		}
		var elemTy *types.Type
		for _, el := range n.Elements {
			elemTy = c.evalType(el, errs)
		}
		return types.ListOf(elemTy)

	case *ast.AttrRes:
		return c.evalAttrResType(n, errs)

	default:
		return types.TAny
	}
}

// lookupVarType resolves name against locals, then arguments, then globals,
// in that order, matching the reference interpreter's lookup priority.
func (c *Compiler) lookupVarType(name string) (*types.Type, bool) {
	if scope := c.symbols.CurrentScope(); scope != nil {
		if l, ok := scope.LookupLocal(name); ok {
			return l.Type, true
		}
		if a, ok := scope.LookupArg(name); ok {
			return a.Type, true
		}
	}
	if g, ok := c.symbols.LookupGlobal(name); ok {
		return g.Type, true
	}
	return nil, false
}

// evalAttrResType walks a dotted chain a.b.c, resolving each link against
// the static type produced by the previous one (or the ordinary
// local/arg/global lookup for the first link).
func (c *Compiler) evalAttrResType(n *ast.AttrRes, errs *ErrorList) *types.Type {
	var parent *types.Type
	for i, elem := range n.Chain {
		switch link := elem.(type) {
		case *ast.VarCall:
			if i == 0 {
				ty, ok := c.lookupVarType(link.Name)
				if !ok {
					if errs != nil {
						start, _ := link.Span()
						errs.Add(UnknownName, start, "unknown variable %q", link.Name)
					}
					parent = types.TAny
					continue
				}
				parent = ty
				continue
			}
			class, ok := c.symbols.LookupClass(parent.Name)
			if !ok {
				if errs != nil {
					start, _ := link.Span()
					errs.Add(UnknownNamespace, start, "unknown namespace %q", parent)
				}
				parent = types.TAny
				continue
			}
			member := class.Member(link.Name)
			if member == nil {
				if errs != nil {
					start, _ := link.Span()
					errs.Add(UnknownMember, start, "unknown member %q on %s", link.Name, parent)
				}
				parent = types.TAny
				continue
			}
			parent = member.Type

		case *ast.FuncCall:
			namespace := c.namespace
			if i > 0 {
				namespace = parent.Name
			}
			argTypes := make([]*types.Type, len(link.Args))
			for j, a := range link.Args {
				argTypes[j] = c.evalType(a, errs)
			}
			fn, ambiguous := c.symbols.ResolveFunc(namespace, link.Name, argTypes)
			if ambiguous {
				if errs != nil {
					start, _ := link.Span()
					errs.Add(AmbiguousOverload, start, "ambiguous call to %q", link.Name)
				}
				parent = types.TAny
				continue
			}
			if fn == nil {
				if errs != nil {
					start, _ := link.Span()
					errs.Add(UnknownFunc, start, "unknown function %q", link.Name)
				}
				parent = types.TAny
				continue
			}
			parent = fn.RetType
		}
	}
	return parent
}
