package main

import (
	"fmt"
	"github.com/ejacobg/localclustering/cluster"
	"github.com/ejacobg/localclustering/definition"
	"github.com/ejacobg/localclustering/engine"
	"github.com/ejacobg/localclustering/graph"
	"github.com/ejacobg/localclustering/partition"
	"github.com/ejacobg/localclustering/ranking"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"io"
	"os"
	"time"
)

func definitionFlags() []cli.Flag {
	def := definition.DefaultConnectivityConfig()
	return []cli.Flag{
		cli.Float64Flag{Name: "weighting-coefficient", Value: def.WeightingCoefficient, Usage: "The factor applied to the edge weights connecting a node to the cluster"},
		cli.Float64Flag{Name: "threshold-modifier", Value: def.ThresholdModifier, Usage: "The factor applied to the admission threshold"},
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolTFlag{Name: "keep-sources", Usage: "Never remove the source nodes from the cluster"},
		cli.IntFlag{Name: "max-cluster-size", Usage: "Stop once the cluster has at least this many members (0 means unbounded)"},
		cli.IntFlag{Name: "expansion-steps", Value: 1, Usage: "The number of expansion rounds per iteration"},
		cli.IntFlag{Name: "reduction-steps", Value: 1, Usage: "The number of reduction rounds per iteration"},
		cli.IntFlag{Name: "workers", Value: 1, Usage: "The number of workers evaluating nodes in parallel"},
		cli.StringFlag{Name: "rank-policy", Value: ranking.PolicyLast.String(), Usage: "How node ranks are aggregated (last, sum, recency)"},
		cli.BoolFlag{Name: "trace", Usage: "Print the step-by-step history of the run"},
	}
}

func hierarchyFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "min-cluster-size", Value: engine.DefaultMinClusterSize, Usage: "Stop relaxing once the cluster has at least this many members"},
		cli.Float64Flag{Name: "min-relax-multiplier", Usage: "The smallest factor a relaxation may scale the weighting coefficient by (0 disables the floor)"},
	}
}

func batchFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "partition", Value: "0/1", Usage: "The partition to process as INDEX/COUNT"},
	}
}

func connectivity(c *cli.Context) (*definition.Connectivity, error) {
	return definition.NewConnectivity(definition.ConnectivityConfig{
		WeightingCoefficient: c.Float64("weighting-coefficient"),
		ThresholdModifier:    c.Float64("threshold-modifier"),
		MinRelaxMultiplier:   c.Float64("min-relax-multiplier"),
	})
}

func engineConfig(c *cli.Context, g graph.Graph, def definition.Definition, logger *logrus.Entry) engine.Config {
	return engine.Config{
		Graph:           g,
		Definition:      def,
		SourcesInResult: c.BoolT("keep-sources"),
		MaxClusterSize:  c.Int("max-cluster-size"),
		ExpansionSteps:  c.Int("expansion-steps"),
		ReductionSteps:  c.Int("reduction-steps"),
		Workers:         c.Int("workers"),
		Logger:          logger,
	}
}

func runCluster(c *cli.Context, g graph.Graph, logger *logrus.Entry) error {
	sources, err := resolveSources(g, c.Args())
	if err != nil {
		return err
	}
	def, err := connectivity(c)
	if err != nil {
		return err
	}

	e, err := engine.NewMultiStep(engineConfig(c, g, def, logger))
	if err != nil {
		return err
	}
	res, err := e.Cluster(sources)
	if err != nil {
		return err
	}
	return report(c, g, res)
}

func runHierarchy(c *cli.Context, g graph.Graph, logger *logrus.Entry) error {
	sources, err := resolveSources(g, c.Args())
	if err != nil {
		return err
	}
	def, err := connectivity(c)
	if err != nil {
		return err
	}

	cfg := engineConfig(c, g, def, logger)
	e, err := engine.NewHierarchical(engine.HierarchicalConfig{
		Graph:           cfg.Graph,
		Definition:      def,
		SourcesInResult: cfg.SourcesInResult,
		MinClusterSize:  c.Int("min-cluster-size"),
		MaxClusterSize:  cfg.MaxClusterSize,
		ExpansionSteps:  cfg.ExpansionSteps,
		ReductionSteps:  cfg.ReductionSteps,
		Workers:         cfg.Workers,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return err
	}
	res, err := e.Cluster(sources)
	if err != nil {
		return err
	}
	return report(c, g, res)
}

// assignedPartition returns the partition selected with --partition together
// with its ID extents.
func assignedPartition(c *cli.Context, logger *logrus.Entry) (partition.Range, int, uuid.UUID, uuid.UUID, error) {
	r, index, err := partition.Parse(c.String("partition"))
	if err != nil {
		return partition.Range{}, 0, uuid.Nil, uuid.Nil, err
	}
	from, to, err := r.PartitionExtents(index)
	if err != nil {
		return partition.Range{}, 0, uuid.Nil, uuid.Nil, err
	}
	logger.WithFields(logrus.Fields{
		"partition":  index,
		"partitions": r.NumPartitions(),
		"from":       from,
		"to":         to,
	}).Debug("resolved partition")
	return r, index, from, to, nil
}

func runBatch(c *cli.Context, g graph.Graph, logger *logrus.Entry) error {
	r, index, from, to, err := assignedPartition(c, logger)
	if err != nil {
		return err
	}

	def, err := connectivity(c)
	if err != nil {
		return err
	}
	e, err := engine.NewMultiStep(engineConfig(c, g, def, logger))
	if err != nil {
		return err
	}

	it, err := g.Nodes(from, to)
	if err != nil {
		return err
	}
	var nodes []*graph.Node
	for it.Next() {
		node := it.Node()
		if p, err := r.PartitionOf(node.ID); err != nil || p != index {
			_ = it.Close()
			return fmt.Errorf("node %q is not part of partition %d", node.Name, index)
		}
		nodes = append(nodes, node)
	}
	if err = it.Error(); err != nil {
		_ = it.Close()
		return err
	}
	if err = it.Close(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"partition": index,
		"nodes":     len(nodes),
	}).Info("clustering partition")

	w := writer(c)
	for _, node := range nodes {
		res, err := e.Cluster([]uuid.UUID{node.ID})
		if err != nil {
			return fmt.Errorf("cluster %q: %w", node.Name, err)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", node.Name, res.Cluster.Len(), res.History.Len(), res.Reason)
	}
	return nil
}

func runImport(c *cli.Context, g graph.Graph, logger *logrus.Entry) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one edge list file")
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	ids, err := graph.ImportEdgeList(g, f)
	if err != nil {
		return err
	}
	logger.WithField("nodes", len(ids)).Info("imported edge list")
	return nil
}

func runExport(c *cli.Context, g graph.Graph, logger *logrus.Entry) error {
	_, index, from, to, err := assignedPartition(c, logger)
	if err != nil {
		return err
	}

	n, err := graph.ExportEdgeList(g, writer(c), from, to, time.Now())
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"partition": index,
		"edges":     n,
	}).Info("exported edge list")
	return nil
}

func resolveSources(g graph.Graph, names []string) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, cluster.ErrNoSources
	}

	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		node, err := g.FindNodeByName(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, node.ID)
	}
	return ids, nil
}

// report prints the members of the cluster ordered by rank.
func report(c *cli.Context, g graph.Graph, res *engine.Result) error {
	policy, err := ranking.ParsePolicy(c.String("rank-policy"))
	if err != nil {
		return err
	}

	names := make(map[uuid.UUID]string)
	name := func(id uuid.UUID) string {
		if n, found := names[id]; found {
			return n
		}
		n := id.String()
		if node, err := g.FindNode(id); err == nil {
			n = node.Name
		}
		names[id] = n
		return n
	}

	w := writer(c)
	_, _ = fmt.Fprintf(w, "reason: %s\nlevels: %d\niterations: %d\nsize: %d\n", res.Reason, res.Levels, res.History.Len(), res.Cluster.Len())

	// Sources that were never evaluated have no rank and are listed first.
	provider := res.RankProvider(policy)
	var ranked []uuid.UUID
	for _, id := range res.Cluster.Members() {
		if _, err := provider.NodeRank(id); err != nil {
			_, _ = fmt.Fprintf(w, "%s\t-\n", name(id))
			continue
		}
		ranked = append(ranked, id)
	}

	ranked, err = provider.SortByRank(ranked, true)
	if err != nil {
		return err
	}
	ranks, err := provider.NodeRanks(ranked)
	if err != nil {
		return err
	}
	for i, id := range ranked {
		_, _ = fmt.Fprintf(w, "%s\t%.4f\n", name(id), ranks[i])
	}

	if c.Bool("trace") {
		_, _ = fmt.Fprintln(w, res.History.Trace(name))
	}
	return nil
}

func writer(c *cli.Context) io.Writer {
	return c.App.Writer
}
