package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAutoSuccess(c *Collector, parents []ParentRef) (ParentRef, error) {
	st, err := NewSubtask[*autoSuccessActivity, string, error](c, &autoSuccessActivity{}, parents...)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// buildAuto builds a node around self. A Collector keeps one slot per
// activity type, so every node of one graph gets its own type.
func buildAuto[Self attachable[string, error]](self Self) func(*Collector, []ParentRef) (ParentRef, error) {
	return func(c *Collector, parents []ParentRef) (ParentRef, error) {
		return NewSubtask[Self, string, error](c, self, parents...)
	}
}

func TestTopoSort_OrdersParentsBeforeChildren(t *testing.T) {
	nodes := []Node{
		{Name: "render", Parents: []string{"user", "orders"}, Build: buildAutoSuccess},
		{Name: "user", Build: buildAutoSuccess},
		{Name: "orders", Parents: []string{"user"}, Build: buildAutoSuccess},
	}

	order, err := topoSort(nodes)
	require.NoError(t, err)

	index := make(map[string]int, len(order))
	for i, n := range order {
		index[n.Name] = i
	}
	assert.Less(t, index["user"], index["orders"])
	assert.Less(t, index["orders"], index["render"])
}

func TestTopoSort_RejectsUnknownParent(t *testing.T) {
	nodes := []Node{
		{Name: "orders", Parents: []string{"ghost"}, Build: buildAutoSuccess},
	}
	_, err := topoSort(nodes)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTopoSort_RejectsCycle(t *testing.T) {
	nodes := []Node{
		{Name: "a", Parents: []string{"b"}, Build: buildAutoSuccess},
		{Name: "b", Parents: []string{"a"}, Build: buildAutoSuccess},
	}
	_, err := topoSort(nodes)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunGraph_RunsDiamondToCompletion(t *testing.T) {
	nodes := []Node{
		{Name: "user", Build: buildAutoSuccess},
		{Name: "profile", Parents: []string{"user"}, Build: buildAuto(&autoSuccessB{})},
		{Name: "orders", Parents: []string{"user"}, Build: buildAuto(&autoSuccessC{})},
		{Name: "render", Parents: []string{"profile", "orders"}, Build: buildAuto(&autoSuccessD{})},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := RunGraph(ctx, nil, nodes, WithReactor(syncReactor{}))
	assert.NoError(t, err)
}

func TestRunGraph_RejectsUnknownParentBeforeRunning(t *testing.T) {
	nodes := []Node{
		{Name: "orders", Parents: []string{"ghost"}, Build: buildAutoSuccess},
	}
	err := RunGraph(context.Background(), nil, nodes, WithReactor(syncReactor{}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunGraph_ContextCancellationSurfacesAsError(t *testing.T) {
	neverCompletes := func(c *Collector, parents []ParentRef) (ParentRef, error) {
		return NewSubtask[*stubActivity, string, error](c, &stubActivity{}, parents...)
	}
	nodes := []Node{
		{Name: "stuck", Build: neverCompletes},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunGraph(ctx, nil, nodes, WithReactor(syncReactor{}))
	assert.ErrorIs(t, err, context.Canceled)
}
