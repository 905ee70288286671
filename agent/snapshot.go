package agent

import "context"

// MemoryInfo describes one attached memory store.
type MemoryInfo struct {
	Scope    string `json:"scope,omitempty"`
	Messages int    `json:"messages"`
}

// Snapshot is a structured view of an agent's configuration and memory
// occupancy, for inspection and debugging.
type Snapshot struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Instructions  string         `json:"instructions,omitempty"`
	Model         string         `json:"model"`
	Provider      string         `json:"provider"`
	Tools         []string       `json:"tools,omitempty"`
	SubAgents     []string       `json:"sub_agents,omitempty"`
	Memories      []MemoryInfo   `json:"memories,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	MaxIterations int            `json:"max_iterations"`
}

// Snapshot reports the agent's current shape. Memory counts are live reads;
// a store that fails to count reports -1.
func (a *Agent) Snapshot(ctx context.Context) *Snapshot {
	info := a.llm.Info()

	snap := &Snapshot{
		Name:          a.name,
		Description:   a.description,
		Instructions:  a.instructions,
		Model:         info.Name,
		Provider:      info.Provider,
		Tools:         a.ToolNames(),
		Params:        a.params,
		MaxIterations: a.maxIterations,
	}

	for _, sub := range a.subAgents {
		snap.SubAgents = append(snap.SubAgents, sub.Name())
	}
	for _, store := range a.memories {
		count, err := store.Count(ctx)
		if err != nil {
			count = -1
		}
		snap.Memories = append(snap.Memories, MemoryInfo{
			Scope:    store.Scope().Key(),
			Messages: count,
		})
	}
	return snap
}
