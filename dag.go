package activity

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Node describes one activity to run as part of RunGraph: its constructor,
// and the names of the nodes it depends on. Names are caller-chosen labels,
// only used to resolve the dependency graph; they do not need to match any
// Go type name.
// Build constructs the node's Subtask given the already-built collector and
// its resolved parent references; it is responsible for calling
// NewSubtask and applying any Required/CancelIf/IfErrored/IfFailed/Prepare
// configuration the node needs.
type Node struct {
	Name    string
	Parents []string
	Build   func(collector *Collector, parents []ParentRef) (ParentRef, error)
}

// RunGraph is a convenience entry point for the common case: build a
// Starter, wire every Node's dependencies by name, and run it until a
// forced final barrier over every node fires (all nodes resolved, or any
// one canceled). RunGraph then returns nil whatever terminal states the
// nodes reached: a node's failure is not reported through the returned
// error, which only reports an unknown parent or a cycle, an error from a
// Node's Build, or ctx's cancellation. It
// trades the full Subtask/Combinator API's flexibility for a one-call shape
// that fits a graph already known in full up front, such as one loaded
// from EngineConfig-adjacent YAML.
//
// ctx's Done channel, if any, is observed by an errgroup.Group: RunGraph
// returns as soon as either the graph's final barrier fires or ctx is
// canceled, whichever comes first.
func RunGraph(ctx context.Context, requestContext any, nodes []Node, opts ...CollectorOption) error {
	starter := NewStarter(requestContext, opts...)
	built := make(map[string]ParentRef, len(nodes)+1)
	built[""] = starter

	order, err := topoSort(nodes)
	if err != nil {
		return err
	}

	var g errgroup.Group

	watch := make([]ParentRef, 0, len(nodes))
	for _, n := range order {
		n := n
		parentRefs := make([]ParentRef, 0, len(n.Parents))
		if len(n.Parents) == 0 {
			parentRefs = append(parentRefs, starter)
		}
		for _, pname := range n.Parents {
			p, ok := built[pname]
			if !ok {
				return ErrInvalidConfig
			}
			parentRefs = append(parentRefs, p)
		}
		ref, err := n.Build(starter.Collector(), parentRefs)
		if err != nil {
			return err
		}
		built[n.Name] = ref
		watch = append(watch, ref)
	}

	done := make(chan struct{})
	barrier := NewBarrier(starter.Collector(), watch...).Force()
	if err := barrier.Exec(func(Accessor) { close(done) }); err != nil {
		return err
	}

	g.Go(func() error {
		starter.Begin()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return g.Wait()
}

// topoSort orders nodes so every node follows all of its named parents,
// rejecting unknown parent names and dependency cycles.
func topoSort(nodes []Node) ([]Node, error) {
	byName := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int, len(nodes))
	var order []Node

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return ErrInvalidConfig
		}
		n, ok := byName[name]
		if !ok {
			return ErrInvalidConfig
		}
		state[name] = gray
		for _, p := range n.Parents {
			if p == "" {
				continue
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		state[name] = black
		order = append(order, n)
		return nil
	}

	for _, n := range nodes {
		if err := visit(n.Name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
