package graph

import (
	"bufio"
	"fmt"
	"github.com/google/uuid"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ImportEdgeList reads a whitespace-separated edge list from r and upserts its
// nodes and edges into g. Every line holds two node names and an optional
// edge weight that defaults to 1. A line with a single name declares a node
// without edges. Blank lines and lines starting with '#' are ignored.
//
// ImportEdgeList returns the IDs of the imported nodes keyed by name.
func ImportEdgeList(g Graph, r io.Reader) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID)
	upsert := func(name string) (uuid.UUID, error) {
		if id, found := ids[name]; found {
			return id, nil
		}
		node := &Node{Name: name}
		if err := g.UpsertNode(node); err != nil {
			return uuid.Nil, err
		}
		ids[name] = node.ID
		return node.ID, nil
	}

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 3 {
			return nil, fmt.Errorf("edge list line %d: expected at most 3 fields, got %d", lineNo, len(fields))
		}

		src, err := upsert(fields[0])
		if err != nil {
			return nil, fmt.Errorf("edge list line %d: %w", lineNo, err)
		}
		if len(fields) == 1 {
			continue
		}

		weight := 1.0
		if len(fields) == 3 {
			if weight, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return nil, fmt.Errorf("edge list line %d: %w", lineNo, err)
			}
		}

		dst, err := upsert(fields[1])
		if err != nil {
			return nil, fmt.Errorf("edge list line %d: %w", lineNo, err)
		}
		if err = g.UpsertEdge(&Edge{Src: src, Dst: dst, Weight: weight}); err != nil {
			return nil, fmt.Errorf("edge list line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("edge list: %w", err)
	}

	return ids, nil
}

// ExportEdgeList writes the nodes whose IDs belong to the [fromID, toID)
// range to w in the format read by ImportEdgeList. Every edge whose source
// lies in the range and which was updated before updatedBefore is written as
// a "src dst weight" line; nodes without neighbors are written as a single
// name. Lines are sorted so that exports of the same graph are comparable.
//
// ExportEdgeList returns the number of edges written.
func ExportEdgeList(g Graph, w io.Writer, fromID, toID uuid.UUID, updatedBefore time.Time) (int, error) {
	names := make(map[uuid.UUID]string)
	name := func(id uuid.UUID) (string, error) {
		if n, found := names[id]; found {
			return n, nil
		}
		node, err := g.FindNode(id)
		if err != nil {
			return "", fmt.Errorf("export edge list: %w", err)
		}
		names[id] = node.Name
		return node.Name, nil
	}

	var lines []string
	edges, err := g.Edges(fromID, toID, updatedBefore)
	if err != nil {
		return 0, fmt.Errorf("export edge list: %w", err)
	}
	for edges.Next() {
		edge := edges.Edge()
		src, err := name(edge.Src)
		if err != nil {
			_ = edges.Close()
			return 0, err
		}
		dst, err := name(edge.Dst)
		if err != nil {
			_ = edges.Close()
			return 0, err
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", src, dst, strconv.FormatFloat(edge.Weight, 'g', -1, 64)))
	}
	if err = closeIterator(edges); err != nil {
		return 0, fmt.Errorf("export edge list: %w", err)
	}
	numEdges := len(lines)

	nodes, err := g.Nodes(fromID, toID)
	if err != nil {
		return 0, fmt.Errorf("export edge list: %w", err)
	}
	for nodes.Next() {
		node := nodes.Node()
		isolated, err := isIsolated(g, node.ID)
		if err != nil {
			_ = nodes.Close()
			return 0, fmt.Errorf("export edge list: %w", err)
		}
		if isolated {
			lines = append(lines, node.Name)
		}
	}
	if err = closeIterator(nodes); err != nil {
		return 0, fmt.Errorf("export edge list: %w", err)
	}

	sort.Strings(lines)
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err = fmt.Fprintln(bw, line); err != nil {
			return 0, fmt.Errorf("export edge list: %w", err)
		}
	}
	if err = bw.Flush(); err != nil {
		return 0, fmt.Errorf("export edge list: %w", err)
	}
	return numEdges, nil
}

func isIsolated(g Graph, id uuid.UUID) (bool, error) {
	it, err := g.Neighbors(id)
	if err != nil {
		return false, err
	}
	hasNeighbors := it.Next()
	return !hasNeighbors, closeIterator(it)
}

// closeIterator closes it and returns the first error reported by the
// iterator or by Close.
func closeIterator(it Iterator) error {
	err := it.Error()
	if cErr := it.Close(); err == nil {
		err = cErr
	}
	return err
}
