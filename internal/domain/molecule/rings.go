package molecule

// RingInfo records ring membership of atoms and bonds.
type RingInfo struct {
	Atoms []bool
	Bonds []bool
}

// RingInfo perceives ring membership.  A bond is in a ring exactly when it is
// not a bridge of the graph; bridges are found with an iterative Tarjan
// traversal so large fused systems need no deep recursion.
func (g *Graph) RingInfo() RingInfo {
	n := len(g.Atoms)
	info := RingInfo{Atoms: make([]bool, n), Bonds: make([]bool, len(g.bonds))}
	bridge := make([]bool, len(g.bonds))
	disc := make([]int, n) // 0 = unvisited
	low := make([]int, n)
	timer := 0

	type frame struct{ v, parentBond, next int }
	for s := 0; s < n; s++ {
		if disc[s] != 0 {
			continue
		}
		timer++
		disc[s], low[s] = timer, timer
		stack := []frame{{v: s, parentBond: -1}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(g.adj[top.v]) {
				b := g.adj[top.v][top.next]
				top.next++
				if b == top.parentBond {
					continue
				}
				w := g.bonds[b].Other(top.v)
				if disc[w] == 0 {
					timer++
					disc[w], low[w] = timer, timer
					stack = append(stack, frame{v: w, parentBond: b})
				} else if disc[w] < low[top.v] {
					low[top.v] = disc[w]
				}
				continue
			}
			v, pb := top.v, top.parentBond
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue
			}
			p := stack[len(stack)-1].v
			if low[v] < low[p] {
				low[p] = low[v]
			}
			if low[v] > disc[p] {
				bridge[pb] = true
			}
		}
	}

	for b, bd := range g.bonds {
		if bridge[b] {
			continue
		}
		info.Bonds[b] = true
		info.Atoms[bd.Begin] = true
		info.Atoms[bd.End] = true
	}
	return info
}

//Personal.AI order the ending
