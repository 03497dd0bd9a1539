package codegen

import (
	"github.com/fdanielsen/lobster/ast"
	"github.com/fdanielsen/lobster/internal/diag"
	"github.com/fdanielsen/lobster/natives"
	"github.com/fdanielsen/lobster/opcode"
)

// genCoroutine implements spec.md §4.4's Coroutine rule: CORO with a
// placeholder end-offset and the set of variables live across the
// coroutine boundary, the body, then COEND with the placeholder
// patched to point past it.
func (g *Generator) genCoroutine(v *ast.Coroutine) int {
	if !containsYield(v.Body, g.Natives) {
		g.fail(v, diag.ErrCoroutineConstruct, "coroutine body contains no yield")
		return 1
	}

	live := liveVars(v.Body)
	g.prog.Op(int32(opcode.CORO))
	endSlot := g.prog.Reserve()
	g.prog.Int(int32(len(live)))
	for _, idx := range live {
		g.prog.Int(int32(idx))
	}

	g.genExpr(v.Body)

	g.prog.Op(int32(opcode.COEND))
	g.prog.PatchAt(endSlot, int32(g.prog.Len()))
	return 1
}

// containsYield walks body looking for a NatCall into the "yield"
// builtin, the reachability check spec.md §4.4 requires before a
// coroutine construct is allowed to emit CORO at all.
func containsYield(n ast.Node, nat natives.Catalog) bool {
	if n == nil {
		return false
	}
	if nc, ok := n.(*ast.NatCall); ok {
		if sig := nat.Native(nc.NativeIdx); sig != nil && sig.Name == "yield" {
			return true
		}
	}
	for _, c := range n.Children() {
		if containsYield(c, nat) {
			return true
		}
	}
	return false
}

// liveVars collects the set of local variable indices referenced
// anywhere in body, in first-seen order; this is the set CORO must
// preserve across a yield (spec.md §4.4), approximated here as every
// variable the coroutine body touches rather than a precise liveness
// solve.
func liveVars(n ast.Node) []int {
	seen := map[int]bool{}
	var out []int
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		if node == nil {
			return
		}
		if id, ok := node.(*ast.Ident); ok {
			if !seen[id.Idx] {
				seen[id.Idx] = true
				out = append(out, id.Idx)
			}
		}
		for _, c := range node.Children() {
			walk(c)
		}
	}
	walk(n)
	return out
}
