// Package symbols implements Chalcedony's symbol environment: the global,
// local, argument, function and class tables the compiler consults and
// populates while lowering a chunk to bytecode.
package symbols

import (
	"sort"
	"strings"

	"github.com/dolthub/swiss"

	"github.com/aalyth/chalcedony/lang/types"
)

// Global describes a global variable binding.
type Global struct {
	Slot    int
	Type    *types.Type
	IsConst bool
}

// Local describes a local variable binding, scoped to the function
// currently being compiled.
type Local struct {
	Slot    int
	Type    *types.Type
	IsConst bool
}

// Arg describes a function argument binding, addressable by its positional
// index within the frame.
type Arg struct {
	Index int
	Type  *types.Type
}

// Func describes a registered function (or method) signature.
type Func struct {
	Name      string
	Namespace string // "" for free functions
	Args      []*types.Type
	ArgNames  []string
	RetType   *types.Type
	Entry     int  // bytecode offset of the first body instruction, right after CreateFunc
	IsUnsafe  bool // trailing '!' in the source name
}

// Member describes a single class member (field).
type Member struct {
	Index int
	Name  string
	Type  *types.Type
}

// Class describes a registered class namespace.
type Class struct {
	Name    string
	Members []*Member
}

func (c *Class) Member(name string) *Member {
	for _, m := range c.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// funcKey identifies an overload set entry: the qualified name plus an
// encoded argument-type signature, used as the swiss map key since the
// function registry supports overloading by argument list.
type funcKey string

func makeFuncKey(namespace, name string, args []*types.Type) funcKey {
	var sb strings.Builder
	sb.WriteString(namespace)
	sb.WriteByte('.')
	sb.WriteString(name)
	for _, a := range args {
		sb.WriteByte('|')
		sb.WriteString(a.String())
	}
	return funcKey(sb.String())
}

// overloadGroupKey groups every registered overload under the same bare name so
// that resolution can enumerate candidates.
func overloadGroupKey(namespace, name string) string { return namespace + "." + name }

// Table is the full symbol environment for one compilation: globals,
// functions and classes live for the whole program; a fresh Scope is pushed
// for each function body being compiled, holding its locals and arguments.
type Table struct {
	globals    *swiss.Map[string, *Global]
	globalSlot int

	funcs     *swiss.Map[funcKey, *Func]
	overloads map[string][]*Func // overloadGroupKey -> candidates, insertion order

	classes *swiss.Map[string, *Class]

	scopes []*Scope // stack of function-local scopes being compiled
}

// NewTable creates an empty symbol environment.
func NewTable() *Table {
	return &Table{
		globals:   swiss.NewMap[string, *Global](16),
		funcs:     swiss.NewMap[funcKey, *Func](16),
		overloads: make(map[string][]*Func),
		classes:   swiss.NewMap[string, *Class](4),
	}
}

// Scope holds the locals and arguments visible while compiling one function
// body.
type Scope struct {
	locals    *swiss.Map[string, *Local]
	localSlot int
	args      map[string]*Arg
	argOrder  []string
}

// PushScope starts a new function-local scope and returns it; pop it with
// PopScope once the function body has been compiled.
func (t *Table) PushScope() *Scope {
	s := &Scope{
		locals: swiss.NewMap[string, *Local](8),
		args:   make(map[string]*Arg),
	}
	t.scopes = append(t.scopes, s)
	return s
}

// PopScope discards the innermost function-local scope.
func (t *Table) PopScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// CurrentScope returns the innermost open scope, or nil at chunk (global)
// level.
func (t *Table) CurrentScope() *Scope {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}

// DefineGlobal allocates (or looks up an existing) global slot for name.
// Returns the Global and whether it was newly created.
func (t *Table) DefineGlobal(name string, ty *types.Type, isConst bool) (*Global, bool) {
	if g, ok := t.globals.Get(name); ok {
		return g, false
	}
	g := &Global{Slot: t.globalSlot, Type: ty, IsConst: isConst}
	t.globalSlot++
	t.globals.Put(name, g)
	return g, true
}

// LookupGlobal returns the global bound to name, if any.
func (t *Table) LookupGlobal(name string) (*Global, bool) { return t.globals.Get(name) }

// NumGlobals returns the number of allocated global slots, i.e. the size
// the VM must allocate for its globals array.
func (t *Table) NumGlobals() int { return t.globalSlot }

// DefineArg binds argument name at the given positional index within the
// current scope.
func (s *Scope) DefineArg(name string, index int, ty *types.Type) {
	s.args[name] = &Arg{Index: index, Type: ty}
	s.argOrder = append(s.argOrder, name)
}

// LookupArg returns the argument binding for name in this scope, if any.
func (s *Scope) LookupArg(name string) (*Arg, bool) {
	a, ok := s.args[name]
	return a, ok
}

// DefineLocal allocates a fresh local slot for name in this scope. Returns
// the Local and whether it was newly created (a second `let` of the same
// name in the same function is a redefinition error the compiler must
// reject before calling this again).
func (s *Scope) DefineLocal(name string, ty *types.Type, isConst bool) (*Local, bool) {
	if l, ok := s.locals.Get(name); ok {
		return l, false
	}
	l := &Local{Slot: s.localSlot, Type: ty, IsConst: isConst}
	s.localSlot++
	s.locals.Put(name, l)
	return l, true
}

// LookupLocal returns the local bound to name in this scope, if any.
func (s *Scope) LookupLocal(name string) (*Local, bool) { return s.locals.Get(name) }

// DefineFunc registers a function signature under its namespace, name and
// argument-type list. It is an error (reported by the caller) to register
// the exact same signature twice; DefineFunc itself just reports whether an
// identical-signature entry already existed.
func (t *Table) DefineFunc(fn *Func) bool {
	key := makeFuncKey(fn.Namespace, fn.Name, fn.Args)
	if _, ok := t.funcs.Get(key); ok {
		return false
	}
	t.funcs.Put(key, fn)
	gk := overloadGroupKey(fn.Namespace, fn.Name)
	t.overloads[gk] = append(t.overloads[gk], fn)
	return true
}

// ResolveFunc finds the best-matching overload of namespace.name for the
// given argument static types, following the widening-cost rule from the
// language's design notes: prefer an exact match, then the lowest total
// widening cost across candidates with the same arity; ties (two
// candidates with equal minimal cost) are rejected by returning a nil fn
// with ambiguous=true.
func (t *Table) ResolveFunc(namespace, name string, argTypes []*types.Type) (fn *Func, ambiguous bool) {
	candidates := t.overloads[overloadGroupKey(namespace, name)]
	var best *Func
	bestCost := -1
	tie := false

	for _, c := range candidates {
		if len(c.Args) != len(argTypes) {
			continue
		}
		cost := 0
		ok := true
		for i, declared := range c.Args {
			if types.Equal(declared, argTypes[i]) {
				continue
			}
			wc := types.WideningCost(declared, argTypes[i])
			if wc < 0 {
				ok = false
				break
			}
			cost += wc
		}
		if !ok {
			continue
		}
		switch {
		case best == nil || cost < bestCost:
			best = c
			bestCost = cost
			tie = false
		case cost == bestCost:
			tie = true
		}
	}

	if best == nil {
		return nil, false
	}
	if tie {
		return nil, true
	}
	return best, false
}

// LookupFuncExact returns the function registered under an exact argument
// type list, used by the compiler to find the signature it predeclared for a
// function definition it is about to compile.
func (t *Table) LookupFuncExact(namespace, name string, argTypes []*types.Type) (*Func, bool) {
	f, ok := t.funcs.Get(makeFuncKey(namespace, name, argTypes))
	return f, ok
}

// DefineClass registers a new class namespace. Returns false if a class of
// that name already exists. Collisions with built-in type names are
// rejected by the compiler before it ever calls DefineClass.
func (t *Table) DefineClass(c *Class) bool {
	if _, ok := t.classes.Get(c.Name); ok {
		return false
	}
	t.classes.Put(c.Name, c)
	return true
}

// LookupClass returns the class namespace registered under name, if any.
func (t *Table) LookupClass(name string) (*Class, bool) { return t.classes.Get(name) }

// SortedGlobalNames returns global variable names in slot order, one entry
// per allocated global slot.
func (t *Table) SortedGlobalNames() []string {
	names := make([]string, t.globalSlot)
	t.globals.Iter(func(name string, g *Global) bool {
		if g.Slot < len(names) {
			names[g.Slot] = name
		}
		return true
	})
	return names
}

// SortedFuncNames returns every registered function's overload-group key,
// sorted, for deterministic diagnostics/tests.
func (t *Table) SortedFuncNames() []string {
	keys := make([]string, 0, len(t.overloads))
	for k := range t.overloads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
