package main

import (
	"fmt"
	"github.com/ejacobg/localclustering/cdb"
	"github.com/ejacobg/localclustering/graph"
	"github.com/ejacobg/localclustering/inmem"
	"github.com/ejacobg/localclustering/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"net/url"
	"os"
	"strings"
)

var (
	appName = "localclustering"
	appSha  = "populated-at-link-time"
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := newApp(logger).Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		os.Exit(1)
	}
}

func newApp(logger *logrus.Entry) *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "compute local clusters around a set of source nodes"
	app.Version = appSha
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "graph-uri",
			Value:  "in-memory://",
			EnvVar: "GRAPH_URI",
			Usage:  "The URI for connecting to the graph (supported URIs: in-memory://path/to/edges.txt, postgresql://user@host:26257/graph?sslmode=disable)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "The log level (debug, info, warn, error)",
		},
		cli.StringFlag{
			Name:  "params",
			Usage: "A YAML file with default values for the command flags",
		},
		cli.StringFlag{
			Name:  "metrics-out",
			Usage: "If set, write the collected metrics to this file in the Prometheus text format",
		},
	}
	app.Before = func(c *cli.Context) error {
		level, err := logrus.ParseLevel(c.GlobalString("log-level"))
		if err != nil {
			return err
		}
		logger.Logger.SetLevel(level)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "cluster",
			Usage:     "run the local or multi-step cluster engine",
			ArgsUsage: "SOURCE...",
			Flags:     append(definitionFlags(), engineFlags()...),
			Action:    withGraph(logger, runCluster),
		},
		{
			Name:      "hierarchy",
			Usage:     "run the hierarchical cluster engine",
			ArgsUsage: "SOURCE...",
			Flags:     append(append(definitionFlags(), engineFlags()...), hierarchyFlags()...),
			Action:    withGraph(logger, runHierarchy),
		},
		{
			Name:   "batch",
			Usage:  "cluster every node of a node ID partition on its own",
			Flags:  append(append(definitionFlags(), engineFlags()...), batchFlags()...),
			Action: withGraph(logger, runBatch),
		},
		{
			Name:      "import",
			Usage:     "import a whitespace-separated edge list into the graph",
			ArgsUsage: "FILE",
			Action:    withGraph(logger, runImport),
		},
		{
			Name:   "export",
			Usage:  "write the edges of a node ID partition as an edge list",
			Flags:  batchFlags(),
			Action: withGraph(logger, runExport),
		},
	}
	return app
}

type action func(c *cli.Context, g graph.Graph, logger *logrus.Entry) error

// withGraph resolves the graph for a command and, once the command finishes,
// releases it and writes out the collected metrics.
func withGraph(logger *logrus.Entry, fn action) func(*cli.Context) error {
	return func(c *cli.Context) error {
		reg := prometheus.NewRegistry()
		metrics.MustRegister(reg)

		if err := applyParams(c); err != nil {
			return err
		}

		g, closeFn, err := getGraph(c.GlobalString("graph-uri"), logger)
		if err != nil {
			return err
		}
		defer closeFn()

		if err = fn(c, g, logger.WithField("command", c.Command.Name)); err != nil {
			return err
		}

		if out := c.GlobalString("metrics-out"); out != "" {
			if err = prometheus.WriteToTextfile(out, reg); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}
		return nil
	}
}

func getGraph(graphURI string, logger *logrus.Entry) (graph.Graph, func(), error) {
	if graphURI == "" {
		return nil, nil, fmt.Errorf("graph URI must be specified with --graph-uri")
	}

	uri, err := url.Parse(graphURI)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse graph URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory graph")
		g := inmem.NewInMemoryGraph()
		path := strings.TrimPrefix(graphURI, "in-memory://")
		if path == "" {
			return g, func() {}, nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open edge list: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err = graph.ImportEdgeList(g, f); err != nil {
			return nil, nil, err
		}
		return g, func() {}, nil
	case "postgresql":
		logger.Info("using CDB graph")
		g, err := cdb.NewGraph(graphURI)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported graph URI scheme: %q", uri.Scheme)
	}
}
