package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if isNil(node) || !v(node) {
		return
	}

	switch n := node.(type) {
	case *CompilationUnit:
		for _, b := range n.GlobalVars {
			Walk(b, v)
		}
		for _, t := range n.UserTypes {
			Walk(t, v)
		}
		for _, i := range n.Interfaces {
			Walk(i, v)
		}
		for _, p := range n.Pous {
			Walk(p, v)
		}
		for _, i := range n.Implementations {
			Walk(i, v)
		}

	case *Pou:
		Walk(n.Name, v)
		for _, b := range n.VarBlocks {
			Walk(b, v)
		}
		Walk(n.ReturnType, v)
		Walk(n.Extends, v)
		for _, i := range n.Implements {
			Walk(i, v)
		}

	case *Interface:
		Walk(n.Name, v)
		for _, e := range n.Extends {
			Walk(e, v)
		}
		for _, m := range n.Methods {
			Walk(m, v)
		}

	case *Implementation:
		walkStmts(n.Body, v)

	case *VarBlock:
		for _, d := range n.Vars {
			Walk(d, v)
		}

	case *Variable:
		Walk(n.Name, v)
		Walk(n.Type, v)
		Walk(n.Binding, v)
		Walk(n.Init, v)

	case *HardwareBinding:
		for _, a := range n.Address {
			Walk(a, v)
		}

	case *TypeRef:
		Walk(n.Def, v)

	case *UserType:
		Walk(n.Def, v)
		Walk(n.Init, v)

	case *StructType:
		for _, d := range n.Vars {
			Walk(d, v)
		}

	case *EnumType:
		for _, e := range n.Elements {
			Walk(e, v)
		}

	case *EnumElement:
		Walk(n.Value, v)

	case *ArrayType:
		for _, d := range n.Dims {
			Walk(d, v)
		}
		Walk(n.Elem, v)

	case *Dimension:
		Walk(n.Lower, v)
		Walk(n.Upper, v)

	case *SubRangeType:
		Walk(n.Lower, v)
		Walk(n.Upper, v)

	case *PointerType:
		Walk(n.Target, v)

	case *StringType:
		Walk(n.Size, v)

	case *AssignStmt:
		Walk(n.LHS, v)
		Walk(n.RHS, v)

	case *ExprStmt:
		Walk(n.X, v)

	case *IfStmt:
		Walk(n.Cond, v)
		walkStmts(n.Then, v)
		walkStmts(n.Else, v)

	case *CaseStmt:
		Walk(n.Selector, v)
		for _, b := range n.Branches {
			Walk(b, v)
		}
		walkStmts(n.Else, v)

	case *CaseBranch:
		for _, l := range n.Labels {
			Walk(l, v)
		}
		walkStmts(n.Body, v)

	case *ForStmt:
		Walk(n.Counter, v)
		Walk(n.From, v)
		Walk(n.To, v)
		Walk(n.Step, v)
		walkStmts(n.Body, v)

	case *WhileStmt:
		Walk(n.Cond, v)
		walkStmts(n.Body, v)

	case *RepeatStmt:
		walkStmts(n.Body, v)
		Walk(n.Cond, v)

	case *MemberExpr:
		Walk(n.X, v)
		Walk(n.Sel, v)

	case *IndexExpr:
		Walk(n.X, v)
		for _, i := range n.Index {
			Walk(i, v)
		}

	case *DerefExpr:
		Walk(n.X, v)

	case *CallExpr:
		Walk(n.Fun, v)
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *NamedArg:
		Walk(n.Name, v)
		Walk(n.Value, v)

	case *CastExpr:
		Walk(n.Type, v)
		Walk(n.X, v)

	case *Operation:
		Walk(n.X, v)
		Walk(n.Y, v)

	// Leaf nodes: Name, BasicLit, AliasType, ReturnStmt, ExitStmt, ContinueStmt
	// No children to visit
	}
}

func walkStmts(list []Stmt, v Visitor) {
	for _, s := range list {
		Walk(s, v)
	}
}

// isNil reports whether node is nil or a typed nil pointer.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Name:
		return n == nil
	case *TypeRef:
		return n == nil
	case *HardwareBinding:
		return n == nil
	}
	return false
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}
