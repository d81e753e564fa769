package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/kass/go-rrt-planner/pkg/config"
	"github.com/kass/go-rrt-planner/pkg/logging"
	"github.com/kass/go-rrt-planner/pkg/metrics"
	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/kass/go-rrt-planner/pkg/postgis"
	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/kass/go-rrt-planner/pkg/scenario"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rrtplan",
	Short: "RRT waypoint planner for UAV navigation",
	Long:  `Plans collision-free waypoint sequences between two geographic positions with a rapidly-exploring random tree.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger = logging.New(cfg.Log)
		return nil
	},
	SilenceUsage: true,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one search and print the waypoints",
	Long:  `Run one search for a scenario file or builtin scenario and print the resulting waypoints.`,
	RunE:  runPlan,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run many independent searches in parallel",
	Long:  `Run independent searches for one scenario over a worker pool and report outcome counts and timing.`,
	RunE:  runBench,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load scenario obstacles into PostGIS",
	Long:  `Store a scenario's obstacle footprints in PostGIS and build the spatial index.`,
	RunE:  runLoad,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Summarize a saved search tree",
	Long:  `Load a tree snapshot written by plan --tree-out, rebuild it and print its shape and the path to the target.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var (
	scenarioFile string
	builtinName  string
	budget       int
	seed         int64
	jsonOutput   bool
	treeOut      string

	numRuns     int
	numWorkers  int
	metricsAddr string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./planner.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	for _, cmd := range []*cobra.Command{planCmd, benchCmd, loadCmd} {
		cmd.Flags().StringVarP(&scenarioFile, "scenario", "s", "", "Scenario YAML file")
		cmd.Flags().StringVarP(&builtinName, "builtin", "b", "", "Builtin scenario: open-line, wall-detour, no-budget")
	}
	for _, cmd := range []*cobra.Command{planCmd, benchCmd} {
		cmd.Flags().IntVarP(&budget, "iterations", "i", 1000, "Iteration budget; overrides the scenario's when given")
		cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	}

	planCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	planCmd.Flags().StringVar(&treeOut, "tree-out", "", "Write the search tree snapshot to this file")

	benchCmd.Flags().IntVarP(&numRuns, "runs", "n", 100, "Number of searches to run")
	benchCmd.Flags().IntVarP(&numWorkers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	benchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (default: metrics.addr from config)")

	rootCmd.AddCommand(planCmd, benchCmd, loadCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadScenario() (*scenario.Scenario, error) {
	switch {
	case scenarioFile != "" && builtinName != "":
		return nil, errors.New("use either --scenario or --builtin, not both")
	case scenarioFile != "":
		return scenario.Load(scenarioFile)
	case builtinName != "":
		s, ok := scenario.Lookup(builtinName)
		if !ok {
			return nil, fmt.Errorf("unknown builtin scenario %q", builtinName)
		}
		return s, nil
	}
	return nil, errors.New("a scenario is required: pass --scenario or --builtin")
}

// request uses the scenario's own budget unless --iterations was given explicitly
func request(cmd *cobra.Command, s *scenario.Scenario) rrt.Request {
	req := s.Request(budget)
	if cmd.Flags().Changed("iterations") {
		req.Iterations = budget
	}
	return req
}

func colorize(status rrt.Status) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return status.String()
	}
	color := colorRed
	switch status {
	case rrt.Succeeded:
		color = colorGreen
	case rrt.Exhausted:
		color = colorYellow
	}
	return color + status.String() + colorReset
}

func runPlan(cmd *cobra.Command, args []string) error {
	s, err := loadScenario()
	if err != nil {
		return err
	}
	field, err := s.Field()
	if err != nil {
		return err
	}

	opts := []rrt.Option{rrt.WithLogger(logger)}
	if seed != 0 {
		opts = append(opts, rrt.WithSeed(seed))
	}
	planner, err := rrt.New(field, cfg.Planner, opts...)
	if err != nil {
		return err
	}

	req := request(cmd, s)
	res, planErr := planner.Plan(req)
	if planErr != nil && errors.Is(planErr, rrt.ErrInvalidRequest) {
		return planErr
	}

	if treeOut != "" && planner.Tree() != nil {
		snap := rrt.Snapshot{Nodes: planner.Tree().Snapshot(), Target: req.Target, Status: res.Status}
		if err := snap.SaveToFile(treeOut); err != nil {
			return fmt.Errorf("failed to save tree: %w", err)
		}
		logger.Info("tree snapshot saved", "file", treeOut, "nodes", len(snap.Nodes))
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("Scenario: %s\n", s.Name)
	fmt.Printf("Status: %s\n", colorize(res.Status))
	if planErr != nil {
		fmt.Printf("Reason: %v\n", planErr)
	}
	fmt.Printf("Iterations: %d (accepted %d, rejected %d)\n", res.Iterations, res.Accepted, res.Rejected)
	fmt.Printf("Tree size: %d\n", res.TreeSize)
	fmt.Printf("Elapsed: %v\n", res.Elapsed)
	if res.Status == rrt.Succeeded {
		fmt.Printf("Waypoints: %d\n", len(res.Waypoints))
		for i, wp := range res.Waypoints {
			fmt.Printf("  %2d  %.7f, %.7f\n", i+1, wp.Lat, wp.Lon)
		}
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	s, err := loadScenario()
	if err != nil {
		return err
	}
	field, err := s.Field()
	if err != nil {
		return err
	}
	if numRuns <= 0 || numWorkers <= 0 {
		return fmt.Errorf("runs and workers must be positive")
	}

	metricsAddr = cfg.Metrics.ListenAddr(metricsAddr)

	collector := metrics.New()
	var server *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		server = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	baseSeed := seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	req := request(cmd, s)

	fmt.Printf("Running %d searches of %s using %d workers...\n", numRuns, s.Name, numWorkers)

	var (
		counts   [rrt.Blocked + 1]atomic.Int64
		waypoint atomic.Int64
		wg       sync.WaitGroup
	)
	jobs := make(chan int)
	start := time.Now()

	for w := 0; w < numWorkers; w++ {
		planner, err := rrt.New(field, cfg.Planner, rrt.WithSeed(baseSeed+int64(w)), rrt.WithLogger(logger))
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(workerID int, planner *rrt.Planner) {
			defer wg.Done()
			for run := range jobs {
				res, err := planner.Plan(req)
				collector.Observe(res)
				counts[res.Status].Add(1)
				if res.Status == rrt.Succeeded {
					waypoint.Add(int64(len(res.Waypoints)))
				}
				if verbose {
					logger.Debug("run finished", "worker", workerID, "run", run, "status", res.Status.String(), "error", err)
				}
			}
		}(w, planner)
	}

	for i := 0; i < numRuns; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	succeeded := counts[rrt.Succeeded].Load()
	fmt.Printf("\nBenchmark Results:\n")
	fmt.Printf("Total searches: %d\n", numRuns)
	fmt.Printf("Total time: %v\n", elapsed)
	fmt.Printf("Searches per second: %.1f\n", float64(numRuns)/elapsed.Seconds())
	fmt.Printf("Average search time: %v\n", elapsed/time.Duration(numRuns))
	fmt.Printf("%s: %d\n", colorize(rrt.Succeeded), succeeded)
	fmt.Printf("%s: %d\n", colorize(rrt.Exhausted), counts[rrt.Exhausted].Load())
	fmt.Printf("%s: %d\n", colorize(rrt.Blocked), counts[rrt.Blocked].Load())
	if succeeded > 0 {
		fmt.Printf("Average waypoints per success: %.2f\n", float64(waypoint.Load())/float64(succeeded))
	}

	if server == nil {
		return nil
	}

	fmt.Printf("\nMetrics available at http://%s/metrics, press Ctrl+C to exit\n", metricsAddr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runLoad(cmd *cobra.Command, args []string) error {
	s, err := loadScenario()
	if err != nil {
		return err
	}
	if len(s.Obstacles) == 0 {
		return fmt.Errorf("scenario %s has no obstacles", s.Name)
	}

	store, err := postgis.NewObstacleStore(cfg.PostGIS, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		return err
	}

	start := time.Now()
	if err := store.BulkInsertObstacles(s.Obstacles); err != nil {
		return err
	}
	if err := store.CreateSpatialIndex(); err != nil {
		return err
	}

	count, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d obstacles in %v\n", count, time.Since(start))

	// read back the planning area as a round-trip check
	area := searchArea(s)
	found, err := store.QueryBox(area)
	if err != nil {
		return err
	}
	fmt.Printf("Obstacles within the planning area: %d\n", len(found))
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	snap, err := rrt.LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	tree, err := snap.Rebuild()
	if err != nil {
		return err
	}

	summary := rrt.Summarize(tree, snap.Target)
	fmt.Printf("Snapshot: %s\n", args[0])
	fmt.Printf("Status: %s\n", colorize(snap.Status))
	fmt.Printf("Nodes: %d (leaves %d, max depth %d)\n", tree.Size(), summary.Leaves, summary.MaxDepth)
	fmt.Printf("Closest node to target: %d, %.1f m away\n", summary.Closest.ID, summary.ClosestDistance)
	fmt.Printf("Path to it: %d nodes, %.1f m\n", len(summary.Path), summary.PathLength)
	if verbose {
		for i, loc := range summary.Path {
			fmt.Printf("  %2d  %.7f, %.7f\n", i, loc.Lat, loc.Lon)
		}
	}
	return nil
}

// searchArea is the box around start and target padded by their separation
func searchArea(s *scenario.Scenario) models.BoundingBox {
	dLat := max(s.Target.Lat-s.Start.Lat, s.Start.Lat-s.Target.Lat)
	dLon := max(s.Target.Lon-s.Start.Lon, s.Start.Lon-s.Target.Lon)
	pad := max(dLat, dLon)
	return models.BoundingBox{
		BottomLeft: models.Location{Lat: min(s.Start.Lat, s.Target.Lat) - pad, Lon: min(s.Start.Lon, s.Target.Lon) - pad},
		TopRight:   models.Location{Lat: max(s.Start.Lat, s.Target.Lat) + pad, Lon: max(s.Start.Lon, s.Target.Lon) + pad},
	}
}
