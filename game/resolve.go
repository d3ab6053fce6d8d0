package game

// ResolveCollisions settles simultaneous grabs. Agents listed in losers get
// nothing. Every other agent keeps its raw grab minus each cell that another
// surviving agent also claimed; contested cells go to no one.
func ResolveCollisions(grabs map[string]PointSet, losers map[string]bool) map[string]PointSet {
	claims := make(map[Point]int)
	for id, g := range grabs {
		if losers[id] {
			continue
		}
		for p := range g {
			claims[p]++
		}
	}
	resolved := make(map[string]PointSet, len(grabs))
	for id, g := range grabs {
		out := make(PointSet)
		if !losers[id] {
			for p := range g {
				if claims[p] == 1 {
					out.Add(p)
				}
			}
		}
		resolved[id] = out
	}
	return resolved
}

// enclosed returns the survivors whose head lies inside another survivor's
// resolved grab, along with the agent that encircled them.
func enclosed(agents []*Agent, resolved map[string]PointSet, losers map[string]bool) map[string]string {
	out := make(map[string]string)
	for _, victim := range agents {
		if losers[victim.ID] {
			continue
		}
		for _, hunter := range agents {
			if hunter == victim || losers[hunter.ID] {
				continue
			}
			if resolved[hunter.ID].Has(victim.Pos) {
				out[victim.ID] = hunter.ID
				break
			}
		}
	}
	return out
}
