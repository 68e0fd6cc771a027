package graphtest

import (
	"errors"
	"fmt"
	"github.com/ejacobg/localclustering/graph"
	graphpartition "github.com/ejacobg/localclustering/partition"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"sort"
	"sync"
	"testing"
	"time"
)

// Suite defines a re-usable set of graph-related tests that can
// be executed against any type that implements graph.Graph.
type Suite struct {
	G graph.Graph

	// Optional helper functions.
	BeforeEach func(*testing.T)
	AfterEach  func(*testing.T)
}

func (s *Suite) TestGraph(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*testing.T, graph.Graph)
	}{
		{"Upsert node", TestUpsertNode},
		{"Find node", TestFindNode},
		{"Concurrent node iterators", TestConcurrentNodeIterators},
		{"Partitioned node iterators", TestPartitionedNodeIterators},
		{"Upsert edge", TestUpsertEdge},
		{"Edge iterator time filter", TestEdgeIteratorTimeFilter},
		{"Partitioned edge iterators", TestPartitionedEdgeIterators},
		{"Neighbors", TestNeighbors},
		{"Concurrent neighbor iterators", TestConcurrentNeighborIterators},
	}

	if s.BeforeEach == nil {
		s.BeforeEach = func(t *testing.T) {}
	}

	if s.AfterEach == nil {
		s.AfterEach = func(t *testing.T) {}
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s.BeforeEach(t)
			test.fn(t, s.G)
			s.AfterEach(t)
		})
	}
}

// TestUpsertNode verifies the node upsert logic.
func TestUpsertNode(t *testing.T, g graph.Graph) {
	original := &graph.Node{Name: "alpha"}
	if err := g.UpsertNode(original); err != nil {
		t.Fatalf("failed to insert node: %v", err)
	}
	if original.ID == uuid.Nil {
		t.Fatalf("expected a nodeID to be assigned to the new node")
	}

	// Upserting a node with the same name must not create a new node.
	sameName := &graph.Node{Name: "alpha"}
	if err := g.UpsertNode(sameName); err != nil {
		t.Fatalf("failed to update node: %v", err)
	}
	if sameName.ID != original.ID {
		t.Fatalf("node ID changed while upserting")
	}

	other := &graph.Node{Name: "beta"}
	if err := g.UpsertNode(other); err != nil {
		t.Fatalf("failed to insert node: %v", err)
	}
	if other.ID == uuid.Nil || other.ID == original.ID {
		t.Errorf("expected a distinct nodeID to be assigned to the new node")
	}
}

// TestFindNode verifies the node lookup logic.
func TestFindNode(t *testing.T, g graph.Graph) {
	node := &graph.Node{Name: "alpha"}
	if err := g.UpsertNode(node); err != nil {
		t.Fatalf("failed to insert node: %v", err)
	}

	other, err := g.FindNode(node.ID)
	if err != nil {
		t.Fatalf("could not find node: %v", err)
	}
	if other.ID != node.ID || other.Name != node.Name {
		t.Errorf("lookup by ID returned the wrong node")
	}

	other, err = g.FindNodeByName("alpha")
	if err != nil {
		t.Fatalf("could not find node by name: %v", err)
	}
	if other.ID != node.ID {
		t.Errorf("lookup by name returned the wrong node")
	}

	_, err = g.FindNodeByName("omega")
	if !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, graph.ErrNotFound)
	}

	_, err = g.FindNode(uuid.Nil)
	if !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, graph.ErrNotFound)
	}
}

// TestConcurrentNodeIterators verifies that multiple clients can concurrently
// access the store.
func TestConcurrentNodeIterators(t *testing.T, g graph.Graph) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numNodes     = 100
	)

	for i := 0; i < numNodes; i++ {
		if err := g.UpsertNode(&graph.Node{Name: fmt.Sprint(i)}); err != nil {
			t.Fatalf("failed to insert node: %v", err)
		}
	}

	wg.Add(numIterators)
	for i := 0; i < numIterators; i++ {
		go func(id int) {
			defer wg.Done()

			itTagComment := fmt.Sprintf("iterator %d", id)
			it, err := partitionedNodeIterator(t, g, 0, 1)
			if err != nil {
				t.Errorf("%s: failed to gather nodes: %v", itTagComment, err)
				return
			}

			seen := make(map[string]bool)
			for it.Next() {
				nodeID := it.Node().ID.String()
				if seen[nodeID] {
					t.Errorf("%s saw the same node twice", itTagComment)
				}
				seen[nodeID] = true
			}

			if len(seen) != numNodes {
				t.Errorf("%s returns %d nodes, want %d", itTagComment, len(seen), numNodes)
			}
			if err = it.Error(); err != nil {
				t.Errorf("%s error: %v", itTagComment, err)
			}
			if err = it.Close(); err != nil {
				t.Errorf("%s failed to close %v", itTagComment, err)
			}
		}(i)
	}

	waitOrTimeout(t, &wg)
}

// TestPartitionedNodeIterators verifies that the graph partitioning logic
// works as expected even when partitions contain an uneven number of items.
func TestPartitionedNodeIterators(t *testing.T, g graph.Graph) {
	numNodes := 100
	numPartitions := 10
	for i := 0; i < numNodes; i++ {
		if err := g.UpsertNode(&graph.Node{Name: fmt.Sprint(i)}); err != nil {
			t.Fatalf("failed to insert node: %v", err)
		}
	}

	// Check with both odd and even partition counts to check for rounding-related bugs.
	if count := iteratePartitionedNodes(t, g, numPartitions); count != numNodes {
		t.Errorf("got %d nodes, want %d", count, numNodes)
	}
	if count := iteratePartitionedNodes(t, g, numPartitions+1); count != numNodes {
		t.Errorf("got %d nodes, want %d", count, numNodes)
	}
}

func iteratePartitionedNodes(t *testing.T, g graph.Graph, numPartitions int) int {
	seen := make(map[string]bool)
	for partition := 0; partition < numPartitions; partition++ {
		it, err := partitionedNodeIterator(t, g, partition, numPartitions)
		if err != nil {
			t.Fatalf("failed to create iterator: %v", err)
		}

		for it.Next() {
			nodeID := it.Node().ID.String()
			if seen[nodeID] {
				t.Error("iterator returned same node in different partitions")
			}
			seen[nodeID] = true
		}

		if err = it.Error(); err != nil {
			t.Errorf("iterator error: %v", err)
		}
		if err = it.Close(); err != nil {
			t.Errorf("failed to close iterator: %v", err)
		}
	}

	return len(seen)
}

// TestUpsertEdge verifies the edge upsert logic.
func TestUpsertEdge(t *testing.T, g graph.Graph) {
	nodeUUIDs := insertNodes(t, g, 3)

	edge := &graph.Edge{
		Src:    nodeUUIDs[0],
		Dst:    nodeUUIDs[1],
		Weight: 1,
	}
	if err := g.UpsertEdge(edge); err != nil {
		t.Fatalf("failed to insert edge: %v", err)
	}
	if edge.ID == uuid.Nil {
		t.Fatalf("expected an edgeID to be assigned to the new edge")
	}
	if edge.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt field not set")
	}

	time.Sleep(time.Millisecond)

	// Upserting the reverse direction updates the same undirected edge.
	reverse := &graph.Edge{
		Src:    nodeUUIDs[1],
		Dst:    nodeUUIDs[0],
		Weight: 2.5,
	}
	if err := g.UpsertEdge(reverse); err != nil {
		t.Fatalf("failed to update edge: %v", err)
	}
	if reverse.ID != edge.ID {
		t.Errorf("edge ID changed while upserting")
	}
	if reverse.Weight != 2.5 {
		t.Errorf("edge weight not updated; got %v", reverse.Weight)
	}
	if reverse.UpdatedAt == edge.UpdatedAt {
		t.Errorf("UpdatedAt field not modified")
	}

	bogus := &graph.Edge{Src: nodeUUIDs[0], Dst: uuid.New(), Weight: 1}
	if err := g.UpsertEdge(bogus); !errors.Is(err, graph.ErrUnknownEdgeNodes) {
		t.Errorf("unexpected error %v, want %v", err, graph.ErrUnknownEdgeNodes)
	}

	zero := &graph.Edge{Src: nodeUUIDs[0], Dst: nodeUUIDs[2]}
	if err := g.UpsertEdge(zero); !errors.Is(err, graph.ErrInvalidWeight) {
		t.Errorf("unexpected error %v, want %v", err, graph.ErrInvalidWeight)
	}

	loop := &graph.Edge{Src: nodeUUIDs[2], Dst: nodeUUIDs[2], Weight: 1}
	if err := g.UpsertEdge(loop); !errors.Is(err, graph.ErrSelfLoop) {
		t.Errorf("unexpected error %v, want %v", err, graph.ErrSelfLoop)
	}
}

// TestEdgeIteratorTimeFilter verifies that the time-based filtering of the
// edge iterator works as expected.
func TestEdgeIteratorTimeFilter(t *testing.T, g graph.Graph) {
	nodeUUIDs := insertNodes(t, g, 4)

	edgeUUIDs := make([]uuid.UUID, len(nodeUUIDs)-1)
	edgeInsertTimes := make([]time.Time, len(edgeUUIDs))
	for i := 0; i < len(edgeUUIDs); i++ {
		edge := &graph.Edge{Src: nodeUUIDs[0], Dst: nodeUUIDs[i+1], Weight: 1}
		if err := g.UpsertEdge(edge); err != nil {
			t.Fatalf("failed to insert edge: %v", err)
		}
		edgeUUIDs[i] = edge.ID
		time.Sleep(time.Millisecond)
		edgeInsertTimes[i] = time.Now()
	}

	for i, ts := range edgeInsertTimes {
		t.Logf("fetching edges created before edge %d", i)
		assertIteratedEdgeIDsMatch(t, g, ts, edgeUUIDs[:i+1])
	}
}

func assertIteratedEdgeIDsMatch(t *testing.T, g graph.Graph, updatedBefore time.Time, exp []uuid.UUID) {
	it, err := partitionedEdgeIterator(t, g, 0, 1, updatedBefore)
	if err != nil {
		t.Fatalf("failed to create iterator: %v", err)
	}

	var got []uuid.UUID
	for it.Next() {
		got = append(got, it.Edge().ID)
	}
	if err = it.Error(); err != nil {
		t.Errorf("iterator error: %v", err)
	}
	if err = it.Close(); err != nil {
		t.Errorf("failed to close iterator: %v", err)
	}

	exp = append([]uuid.UUID(nil), exp...)
	sort.Slice(got, func(l, r int) bool { return got[l].String() < got[r].String() })
	sort.Slice(exp, func(l, r int) bool { return exp[l].String() < exp[r].String() })
	if !cmp.Equal(got, exp) {
		t.Errorf("iterated IDs do not match")
	}
}

// TestPartitionedEdgeIterators verifies that every edge is reported by
// exactly one partition.
func TestPartitionedEdgeIterators(t *testing.T, g graph.Graph) {
	numEdges := 100
	nodeUUIDs := insertNodes(t, g, numEdges+1)
	for i := 0; i < numEdges; i++ {
		if err := g.UpsertEdge(&graph.Edge{
			Src:    nodeUUIDs[0],
			Dst:    nodeUUIDs[i+1],
			Weight: 1,
		}); err != nil {
			t.Fatalf("failed to insert edge: %v", err)
		}
	}

	for _, numPartitions := range []int{10, 11} {
		seen := make(map[string]bool)
		for partition := 0; partition < numPartitions; partition++ {
			it, err := partitionedEdgeIterator(t, g, partition, numPartitions, time.Now())
			if err != nil {
				t.Fatalf("failed to create edge iterator: %v", err)
			}
			for it.Next() {
				edgeID := it.Edge().ID.String()
				if seen[edgeID] {
					t.Error("iterator returned same edge in different partitions")
				}
				seen[edgeID] = true
			}
			if err = it.Error(); err != nil {
				t.Errorf("edge iterator error: %v", err)
			}
			if err = it.Close(); err != nil {
				t.Errorf("failed to close edge iterator: %v", err)
			}
		}

		if len(seen) != numEdges {
			t.Errorf("got %d edges with %d partitions, want %d", len(seen), numPartitions, numEdges)
		}
	}
}

// TestNeighbors verifies that edges are visible from both endpoints together
// with their weights.
func TestNeighbors(t *testing.T, g graph.Graph) {
	nodeUUIDs := insertNodes(t, g, 4)
	edges := []*graph.Edge{
		{Src: nodeUUIDs[0], Dst: nodeUUIDs[1], Weight: 1},
		{Src: nodeUUIDs[2], Dst: nodeUUIDs[0], Weight: 0.5},
		{Src: nodeUUIDs[1], Dst: nodeUUIDs[2], Weight: 3},
	}
	for _, e := range edges {
		if err := g.UpsertEdge(e); err != nil {
			t.Fatalf("failed to insert edge: %v", err)
		}
	}

	exp := map[uuid.UUID]map[uuid.UUID]float64{
		nodeUUIDs[0]: {nodeUUIDs[1]: 1, nodeUUIDs[2]: 0.5},
		nodeUUIDs[1]: {nodeUUIDs[0]: 1, nodeUUIDs[2]: 3},
		nodeUUIDs[2]: {nodeUUIDs[0]: 0.5, nodeUUIDs[1]: 3},
		nodeUUIDs[3]: {},
	}
	for id, want := range exp {
		got := collectNeighbors(t, g, id)
		if !cmp.Equal(got, want) {
			t.Errorf("neighbors of %s: %s", id, cmp.Diff(want, got))
		}
	}

	if _, err := g.Neighbors(uuid.New()); !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, graph.ErrNotFound)
	}
}

// TestConcurrentNeighborIterators verifies that multiple clients can list the
// neighbors of a node concurrently.
func TestConcurrentNeighborIterators(t *testing.T, g graph.Graph) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numNeighbors = 50
	)

	nodeUUIDs := insertNodes(t, g, numNeighbors+1)
	for i := 1; i <= numNeighbors; i++ {
		if err := g.UpsertEdge(&graph.Edge{Src: nodeUUIDs[0], Dst: nodeUUIDs[i], Weight: float64(i)}); err != nil {
			t.Fatalf("failed to insert edge: %v", err)
		}
	}

	wg.Add(numIterators)
	for i := 0; i < numIterators; i++ {
		go func(id int) {
			defer wg.Done()

			it, err := g.Neighbors(nodeUUIDs[0])
			if err != nil {
				t.Errorf("iterator %d: failed to list neighbors: %v", id, err)
				return
			}
			var count int
			for it.Next() {
				count++
			}
			if count != numNeighbors {
				t.Errorf("iterator %d returns %d neighbors, want %d", id, count, numNeighbors)
			}
			if err = it.Close(); err != nil {
				t.Errorf("iterator %d failed to close: %v", id, err)
			}
		}(i)
	}

	waitOrTimeout(t, &wg)
}

func collectNeighbors(t *testing.T, g graph.Graph, id uuid.UUID) map[uuid.UUID]float64 {
	it, err := g.Neighbors(id)
	if err != nil {
		t.Fatalf("failed to list neighbors: %v", err)
	}

	got := make(map[uuid.UUID]float64)
	for it.Next() {
		n := it.Neighbor()
		if _, dup := got[n.ID]; dup {
			t.Errorf("neighbor %s reported twice", n.ID)
		}
		got[n.ID] = n.Weight
	}
	if err = it.Error(); err != nil {
		t.Errorf("iterator error: %v", err)
	}
	if err = it.Close(); err != nil {
		t.Errorf("failed to close iterator: %v", err)
	}
	return got
}

func insertNodes(t *testing.T, g graph.Graph, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		node := &graph.Node{Name: fmt.Sprint(i)}
		if err := g.UpsertNode(node); err != nil {
			t.Fatalf("failed to insert node: %v", err)
		}
		ids[i] = node.ID
	}
	return ids
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup) {
	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	// test completed successfully
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for test to complete")
	}
}

func partitionedNodeIterator(t *testing.T, g graph.Graph, partition, numPartitions int) (graph.NodeIterator, error) {
	from, to := partitionRange(t, partition, numPartitions)
	return g.Nodes(from, to)
}

func partitionedEdgeIterator(t *testing.T, g graph.Graph, partition, numPartitions int, updatedBefore time.Time) (graph.EdgeIterator, error) {
	from, to := partitionRange(t, partition, numPartitions)
	return g.Edges(from, to, updatedBefore)
}

func partitionRange(t *testing.T, partition, numPartitions int) (from, to uuid.UUID) {
	r, err := graphpartition.NewFullRange(numPartitions)
	if err != nil {
		t.Fatal(err)
	}
	if from, to, err = r.PartitionExtents(partition); err != nil {
		t.Fatal(err)
	}
	return from, to
}
