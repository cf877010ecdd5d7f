package datastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/util"
)

// WriteGraph writes the graph as bzip2-compressed text:
//
//	numVertices numEdges [centerLat centerLon radiusMeters]
//	id lat lon osmId        (numVertices lines)
//	tail head length        (numEdges lines)
//
// The city boundary is written only when the graph has one. The file is written to
// filename.tmp and renamed, so a failed write never leaves a truncated graph behind.
func (g *Graph) WriteGraph(filename string) error {
	tmp := filename + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := g.writeGraph(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filename)
}

func (g *Graph) writeGraph(f *os.File) error {
	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	if b, ok := g.GetBoundary(); ok {
		c := b.GetCenter()
		fmt.Fprintf(w, "%d %d %s %s %s\n", len(g.vertices), g.NumberOfEdges(), formatFloat(c.GetLat()),
			formatFloat(c.GetLon()), formatFloat(b.GetRadiusMeters()))
	} else {
		fmt.Fprintf(w, "%d %d\n", len(g.vertices), g.NumberOfEdges())
	}

	for vId := 0; vId < len(g.vertices); vId++ {
		v := g.vertices[vId]
		fmt.Fprintf(w, "%d %s %s %d\n", v.id, formatFloat(v.lat), formatFloat(v.lon), v.osmId)
	}

	g.ForOutEdges(func(e *OutEdge, tail Index) {
		fmt.Fprintf(w, "%d %d %s\n", tail, e.head, formatFloat(e.length))
	})

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(line)
	if len(tokens) != 2 && len(tokens) != 5 {
		return nil, fmt.Errorf("invalid graph header: %q", line)
	}
	var boundary *geo.CityBoundary
	if len(tokens) == 5 {
		var header [3]float64
		for i := range header {
			header[i], err = strconv.ParseFloat(tokens[2+i], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid graph header: %q: %w", line, err)
			}
		}
		b := geo.NewCityBoundary(header[0], header[1], header[2])
		boundary = &b
	}

	numVertices, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}
	numEdges, err := ParseIndex(tokens[1])
	if err != nil {
		return nil, err
	}

	vertices := make([]Vertex, numVertices)
	for i := 0; i < int(numVertices); i++ {
		vertexLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		vertices[i], err = parseVertex(vertexLine)
		if err != nil {
			return nil, err
		}
		if vertices[i].id != Index(i) {
			return nil, fmt.Errorf("vertex %d stored at position %d", vertices[i].id, i)
		}
	}

	edges := make([]Edge, numEdges)
	for i := 0; i < int(numEdges); i++ {
		edgeLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		edges[i], err = parseEdge(edgeLine)
		if err != nil {
			return nil, err
		}
	}

	graph := NewGraph(vertices, edges)
	if boundary != nil {
		graph.SetBoundary(*boundary)
	}
	return graph, nil
}

func ParseIndex(s string) (Index, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Index(v), nil
}

func parseVertex(line string) (Vertex, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 4 {
		return Vertex{}, fmt.Errorf("invalid vertex line: %q", line)
	}
	id, err := ParseIndex(tokens[0])
	if err != nil {
		return Vertex{}, err
	}
	lat, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Vertex{}, err
	}
	lon, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return Vertex{}, err
	}
	osmId, err := strconv.ParseInt(tokens[3], 10, 64)
	if err != nil {
		return Vertex{}, err
	}
	return NewVertex(lat, lon, id, osmId), nil
}

func parseEdge(line string) (Edge, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return Edge{}, fmt.Errorf("invalid edge line: %q", line)
	}
	from, err := ParseIndex(tokens[0])
	if err != nil {
		return Edge{}, err
	}
	to, err := ParseIndex(tokens[1])
	if err != nil {
		return Edge{}, err
	}
	length, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return Edge{}, err
	}
	return NewEdge(from, to, length), nil
}
