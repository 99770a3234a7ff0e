// Command threadsctl runs scenarios against the threads package and checks
// that every primitive and thread is released afterwards.
//
//	threadsctl [-config threads.yaml] [-scenarios scenarios.yaml] [-parallel]
//
// Without -scenarios a built-in counter, handoff and contention scenario is
// run. The exit status is 1 if any scenario fails or leaks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/threads"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("threadsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	scenarioPath := fs.String("scenarios", "", "YAML scenario file (default: built-in scenarios)")
	parallel := fs.Bool("parallel", false, "run all scenarios concurrently")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := threads.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = threads.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(stderr, "threadsctl: %v\n", err)
			return 1
		}
	}
	if err := threads.Configure(cfg); err != nil {
		fmt.Fprintf(stderr, "threadsctl: %v\n", err)
		return 1
	}
	if err := threads.Init(); err != nil {
		fmt.Fprintf(stderr, "threadsctl: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "native: %s\n", threads.NativeStatus())

	scenarios := defaultScenarios()
	if *scenarioPath != "" {
		var err error
		if scenarios, err = loadScenarios(*scenarioPath); err != nil {
			fmt.Fprintf(stderr, "threadsctl: %v\n", err)
			return 1
		}
	}

	var results []Result
	if *parallel {
		results = runParallel(ctx, scenarios)
	} else {
		results = runSequential(ctx, scenarios)
	}

	failed := 0
	for _, r := range results {
		fmt.Fprintln(stdout, r)
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "threadsctl: %d of %d scenarios failed\n", failed, len(results))
		return 1
	}
	return 0
}

func runSequential(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		r := runScenario(ctx, s)
		if err := leakCheck(); err != nil {
			r.Err = errors.Join(r.Err, err)
		}
		results = append(results, r)
	}
	return results
}

// runParallel runs every scenario at once. Leaks can only be attributed to
// the whole batch, so the check runs after the group and fails it as a
// separate result.
func runParallel(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			results[i] = runScenario(gctx, s)
			return results[i].Err
		})
	}
	_ = g.Wait()

	if err := leakCheck(); err != nil {
		results = append(results, Result{Name: "leak-check", Kind: "-", Err: err})
	}
	return results
}
