package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obinnaokechukwu/threads"
)

// Scenario kinds.
const (
	KindCounter    = "counter"
	KindHandoff    = "handoff"
	KindContention = "contention"
)

// Scenario is one entry of a scenario file.
type Scenario struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Threads    int           `yaml:"threads"`
	Iterations int           `yaml:"iterations"`
	Rounds     int           `yaml:"rounds"`
	MutexID    int64         `yaml:"mutex_id"`
	CondID     int64         `yaml:"cond_id"`
	Hold       time.Duration `yaml:"hold"`
}

// ScenarioFile is the top level of a scenario file:
//
//	scenarios:
//	  - name: counter-100
//	    kind: counter
//	    threads: 100
//	    iterations: 1000
//	    mutex_id: 42
type ScenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

func defaultScenarios() []Scenario {
	return []Scenario{
		{Name: "counter", Kind: KindCounter, Threads: 8, Iterations: 1000, MutexID: 42},
		{Name: "handoff", Kind: KindHandoff, Rounds: 100, MutexID: 43, CondID: 7},
		{Name: "contention", Kind: KindContention, MutexID: 44, Hold: 20 * time.Millisecond},
	}
}

func (s *Scenario) applyDefaults() {
	if s.Threads == 0 {
		s.Threads = 2
	}
	if s.Iterations == 0 {
		s.Iterations = 1000
	}
	if s.Rounds == 0 {
		s.Rounds = 10
	}
	if s.Hold == 0 {
		s.Hold = 10 * time.Millisecond
	}
	if s.Name == "" {
		s.Name = s.Kind
	}
}

func (s Scenario) validate() error {
	switch s.Kind {
	case KindCounter, KindHandoff, KindContention:
	default:
		return fmt.Errorf("scenario %q: unknown kind %q", s.Name, s.Kind)
	}
	if s.Threads < 1 || s.Iterations < 1 || s.Rounds < 1 || s.Hold < 0 {
		return fmt.Errorf("scenario %q: threads, iterations and rounds must be positive", s.Name)
	}
	return nil
}

func parseScenarios(data []byte) ([]Scenario, error) {
	var f ScenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, errors.New("no scenarios defined")
	}
	for i := range f.Scenarios {
		f.Scenarios[i].applyDefaults()
		if err := f.Scenarios[i].validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenarios, nil
}

func loadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	scenarios, err := parseScenarios(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenarios, nil
}

// Result is the outcome of one scenario.
type Result struct {
	Name    string
	Kind    string
	Detail  string
	Elapsed time.Duration
	Err     error
}

func (r Result) String() string {
	status := "ok"
	if r.Err != nil {
		status = "FAIL"
	}
	line := fmt.Sprintf("%-4s %-20s %-10s %8s", status, r.Name, r.Kind, r.Elapsed.Round(time.Microsecond))
	if r.Detail != "" {
		line += "  " + r.Detail
	}
	if r.Err != nil {
		line += "  error: " + r.Err.Error()
	}
	return line
}

func runScenario(ctx context.Context, s Scenario) Result {
	r := Result{Name: s.Name, Kind: s.Kind}
	start := time.Now()
	switch s.Kind {
	case KindCounter:
		r.Detail, r.Err = runCounter(ctx, s)
	case KindHandoff:
		r.Detail, r.Err = runHandoff(ctx, s)
	case KindContention:
		r.Detail, r.Err = runContention(ctx, s)
	default:
		r.Err = fmt.Errorf("unknown kind %q", s.Kind)
	}
	r.Elapsed = time.Since(start)
	return r
}

// spawnAll starts one thread per unit and frees them all, returning the
// errors the units reported.
func spawnAll(ctx context.Context, name string, units ...func(context.Context) error) error {
	errs := make([]error, len(units))
	spawned := make([]*threads.Thread, 0, len(units))
	var spawnErr error
	for i, fn := range units {
		th, err := threads.Spawn(threads.UnitFunc(func(ctx context.Context) error {
			errs[i] = fn(ctx)
			return errs[i]
		}), threads.WithName(fmt.Sprintf("%s-%d", name, i)), threads.WithContext(ctx))
		if err != nil {
			spawnErr = err
			break
		}
		spawned = append(spawned, th)
	}
	freeErrs := []error{spawnErr}
	for _, th := range spawned {
		freeErrs = append(freeErrs, th.Free())
	}
	return errors.Join(append(errs, freeErrs...)...)
}

func runCounter(ctx context.Context, s Scenario) (string, error) {
	counter := 0
	units := make([]func(context.Context) error, s.Threads)
	for i := range units {
		units[i] = func(ctx context.Context) error {
			m, err := threads.NewMutexWithID(s.MutexID)
			if err != nil {
				return err
			}
			defer m.Free()
			for j := 0; j < s.Iterations; j++ {
				if err := m.Lock(); err != nil {
					return err
				}
				counter++
				if err := m.Unlock(); err != nil {
					return err
				}
			}
			return nil
		}
	}
	if err := spawnAll(ctx, s.Name, units...); err != nil {
		return "", err
	}

	want := s.Threads * s.Iterations
	detail := fmt.Sprintf("counter=%d", counter)
	if counter != want {
		return detail, fmt.Errorf("counter is %d, want %d", counter, want)
	}
	return detail, nil
}

func runHandoff(ctx context.Context, s Scenario) (string, error) {
	var (
		turn     int // 0: producer, 1: consumer
		value    int
		received = make([]int, 0, s.Rounds)
	)

	side := func(mine int, step func(round int)) func(context.Context) error {
		return func(ctx context.Context) error {
			m, err := threads.NewMutexWithID(s.MutexID)
			if err != nil {
				return err
			}
			defer m.Free()
			c, err := threads.NewConditionWithID(s.CondID)
			if err != nil {
				return err
			}
			defer c.Free()

			for round := 0; round < s.Rounds; round++ {
				if err := m.Lock(); err != nil {
					return err
				}
				for turn != mine {
					if err := c.Wait(m); err != nil {
						_ = m.Unlock()
						return err
					}
				}
				step(round)
				turn = 1 - mine
				if err := c.Broadcast(); err != nil {
					_ = m.Unlock()
					return err
				}
				if err := m.Unlock(); err != nil {
					return err
				}
			}
			return nil
		}
	}

	producer := side(0, func(round int) { value = round })
	consumer := side(1, func(round int) { received = append(received, value) })
	if err := spawnAll(ctx, s.Name, producer, consumer); err != nil {
		return "", err
	}

	detail := fmt.Sprintf("rounds=%d", len(received))
	if len(received) != s.Rounds {
		return detail, fmt.Errorf("consumer saw %d values, want %d", len(received), s.Rounds)
	}
	for i, v := range received {
		if v != i {
			return detail, fmt.Errorf("value %d received in round %d", v, i)
		}
	}
	return detail, nil
}

func runContention(ctx context.Context, s Scenario) (string, error) {
	held := make(chan struct{})
	var blocked time.Duration

	holder := func(ctx context.Context) error {
		m, err := threads.NewMutexWithID(s.MutexID)
		if err != nil {
			return err
		}
		defer m.Free()
		if err := m.Lock(); err != nil {
			close(held)
			return err
		}
		close(held)
		time.Sleep(s.Hold)
		return m.Unlock()
	}
	waiter := func(ctx context.Context) error {
		m, err := threads.NewMutexWithID(s.MutexID)
		if err != nil {
			return err
		}
		defer m.Free()
		<-held
		start := time.Now()
		if err := m.Lock(); err != nil {
			return err
		}
		blocked = time.Since(start)
		return m.Unlock()
	}
	if err := spawnAll(ctx, s.Name, holder, waiter); err != nil {
		return "", err
	}

	detail := fmt.Sprintf("blocked=%s", blocked.Round(time.Microsecond))
	if blocked <= 0 {
		return detail, errors.New("second handle was never blocked")
	}
	return detail, nil
}

// leakCheck fails when any primitive or thread outlived its scenario.
func leakCheck() error {
	var errs []error
	for _, p := range threads.LivePrimitives() {
		errs = append(errs, fmt.Errorf("leaked %s %d (private=%t, refs=%d)", p.Kind, p.ID, p.Private, p.Refs))
	}
	if n := threads.LiveThreads(); n > 0 {
		errs = append(errs, fmt.Errorf("leaked %d threads", n))
	}
	return errors.Join(errs...)
}
