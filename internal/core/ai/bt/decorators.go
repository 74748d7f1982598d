package bt

func (t *Tree) child(id NodeID) (NodeID, bool) {
	if c := t.nodes[id].children; len(c) > 0 {
		return c[0], true
	}
	return NoNode, false
}

func (t *Tree) inverter(id NodeID, ctx *Context) Status {
	c, ok := t.child(id)
	if !ok {
		return Failure
	}
	switch t.Tick(c, ctx) {
	case Success:
		return Failure
	case Failure:
		return Success
	default:
		return Running
	}
}

func (t *Tree) succeeder(id NodeID, ctx *Context) Status {
	c, ok := t.child(id)
	if !ok {
		return Success
	}
	if t.Tick(c, ctx) == Running {
		return Running
	}
	return Success
}

// repeat counts child successes. The child is re-entered on the tick after
// each success, so one full child run costs at least one tick.
func (t *Tree) repeat(id NodeID, ctx *Context) Status {
	c, ok := t.child(id)
	if !ok {
		return Failure
	}
	switch t.Tick(c, ctx) {
	case Failure:
		return Failure
	case Running:
		return Running
	}
	n := &t.nodes[id]
	n.count++
	if n.limit > 0 && n.count >= n.limit {
		return Success
	}
	return Running
}

// cooldown gates fresh child episodes on the frame clock. A running child is
// always resumed.
func (t *Tree) cooldown(id NodeID, ctx *Context) Status {
	c, ok := t.child(id)
	if !ok {
		return Failure
	}
	n := &t.nodes[id]
	if t.nodes[c].state != Running && ctx.Frame < n.readyAt {
		return Failure
	}
	st := t.Tick(c, ctx)
	if st != Running {
		n.readyAt = ctx.Frame + uint64(max(n.limit, 0))
	}
	return st
}
