package bt

// selector tries children from the cursor on. A failing child advances the
// cursor within the same tick; the first Success or Running stops the walk.
func (t *Tree) selector(id NodeID, ctx *Context) Status {
	n := &t.nodes[id]
	if n.cursor < 0 {
		n.cursor = 0
	}
	for n.cursor < len(n.children) {
		switch t.Tick(n.children[n.cursor], ctx) {
		case Success:
			return Success
		case Running:
			return Running
		}
		n.cursor++
	}
	return Failure
}

// sequence runs children from the cursor on until one does not succeed.
// An empty sequence succeeds.
func (t *Tree) sequence(id NodeID, ctx *Context) Status {
	n := &t.nodes[id]
	if n.cursor < 0 {
		n.cursor = 0
	}
	for n.cursor < len(n.children) {
		switch t.Tick(n.children[n.cursor], ctx) {
		case Failure:
			return Failure
		case Running:
			return Running
		}
		n.cursor++
	}
	return Success
}
