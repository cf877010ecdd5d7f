package datastructure

// WeaklyConnectedComponents labels every vertex with the id of its component when edge
// directions are ignored. It returns the labels and the number of components.
func (g *Graph) WeaklyConnectedComponents() ([]Index, int) {
	n := len(g.vertices)
	inAdj := make([][]Index, n)
	g.ForOutEdges(func(e *OutEdge, tail Index) {
		inAdj[e.GetHead()] = append(inAdj[e.GetHead()], tail)
	})

	comp := make([]Index, n)
	for i := range comp {
		comp[i] = INVALID_VERTEX_ID
	}

	numComponents := 0
	queue := make([]Index, 0, 64)
	for s := Index(0); s < Index(n); s++ {
		if comp[s] != INVALID_VERTEX_ID {
			continue
		}
		id := Index(numComponents)
		numComponents++

		comp[s] = id
		queue = append(queue[:0], s)
		for len(queue) > 0 {
			u := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			visit := func(v Index) {
				if comp[v] == INVALID_VERTEX_ID {
					comp[v] = id
					queue = append(queue, v)
				}
			}
			g.ForOutEdgesOf(u, func(e *OutEdge) {
				visit(e.GetHead())
			})
			for _, v := range inAdj[u] {
				visit(v)
			}
		}
	}
	return comp, numComponents
}

// LargestWeaklyConnectedComponent returns the subgraph induced by the biggest weakly connected
// component, with vertices renumbered in their original order. Ties go to the lower component id.
func (g *Graph) LargestWeaklyConnectedComponent() *Graph {
	comp, numComponents := g.WeaklyConnectedComponents()
	if numComponents <= 1 {
		return g
	}

	sizes := make([]int, numComponents)
	for _, c := range comp {
		sizes[c]++
	}
	largest := Index(0)
	for c := 1; c < numComponents; c++ {
		if sizes[c] > sizes[largest] {
			largest = Index(c)
		}
	}

	newID := make([]Index, len(g.vertices))
	vertices := make([]Vertex, 0, sizes[largest])
	for v := range g.vertices {
		if comp[v] != largest {
			newID[v] = INVALID_VERTEX_ID
			continue
		}
		newID[v] = Index(len(vertices))
		old := g.vertices[v]
		vertices = append(vertices, NewVertex(old.lat, old.lon, newID[v], old.osmId))
	}

	edges := make([]Edge, 0, g.NumberOfEdges())
	g.ForOutEdges(func(e *OutEdge, tail Index) {
		if comp[tail] != largest {
			return
		}
		edges = append(edges, NewEdge(newID[tail], newID[e.GetHead()], e.GetLength()))
	})
	return NewGraph(vertices, edges)
}
