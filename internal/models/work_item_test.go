package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineStateHasReportsKeyPresence(t *testing.T) {
	var s PipelineState
	assert.False(t, s.Has(KeyJobData))

	require.NoError(t, s.Set(KeyJobData, map[string]string{"title": "engineer"}))
	assert.True(t, s.Has(KeyJobData))
	assert.False(t, s.Has(KeyFilterResult))
}

func TestPipelineStateGetRoundTripsValue(t *testing.T) {
	var s PipelineState
	type payload struct {
		Title string `json:"title"`
	}
	require.NoError(t, s.Set(KeyJobData, payload{Title: "engineer"}))

	var out payload
	require.NoError(t, s.Get(KeyJobData, &out))
	assert.Equal(t, "engineer", out.Title)
}

func TestPipelineStateGetOnMissingKeyLeavesOutUntouched(t *testing.T) {
	s := PipelineState{}
	out := map[string]string{"untouched": "yes"}
	require.NoError(t, s.Get(KeyAnalysis, &out))
	assert.Equal(t, "yes", out["untouched"])
}

func TestWorkItemStatusIsTerminal(t *testing.T) {
	terminal := []WorkItemStatus{StatusSuccess, StatusFailed, StatusSkipped, StatusFiltered}
	for _, st := range terminal {
		assert.True(t, st.IsTerminal(), "%s should be terminal", st)
	}

	nonTerminal := []WorkItemStatus{StatusPending, StatusProcessing}
	for _, st := range nonTerminal {
		assert.False(t, st.IsTerminal(), "%s should not be terminal", st)
	}
}

func TestWorkItemIsRoot(t *testing.T) {
	root := &WorkItem{AncestryChain: []string{}}
	assert.True(t, root.IsRoot())

	spawned := &WorkItem{AncestryChain: []string{"wi-parent"}}
	assert.False(t, spawned.IsRoot())
}
