package agentloop

import (
	"fmt"

	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/vectorstore"
)

// memoryBackend is the vector backend used by retrieval strategies. A nil
// backend falls back to an in-memory store.
type memoryBackend = vectorstore.Store

func newMemory(cfg *config.Config, llm model.Model, embedder model.Embedder, backend memoryBackend) (memory.Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	switch cfg.Memory.Strategy {
	case "windowed":
		return memory.NewWindowed(func(o *memory.WindowedOptions) {
			o.MaxMessages = cfg.Memory.MaxMessages
		}), nil

	case "summary":
		if llm == nil {
			return nil, fmt.Errorf("summary memory requires a model")
		}
		return memory.NewSummary(llm, func(o *memory.SummaryOptions) {
			o.MaxMessages = cfg.Memory.MaxMessages
			o.SummaryThreshold = cfg.Memory.SummaryThreshold
		}), nil

	case "vector":
		v, err := newVector(cfg, embedder, backend)
		if err != nil {
			return nil, err
		}
		return v, nil

	case "hybrid":
		v, err := newVector(cfg, embedder, backend)
		if err != nil {
			return nil, err
		}
		return memory.NewHybrid(v, func(o *memory.HybridOptions) {
			o.MaxTotal = cfg.Memory.RecallLimit
		}), nil

	default:
		return nil, fmt.Errorf("unknown memory strategy %q", cfg.Memory.Strategy)
	}
}

func newVector(cfg *config.Config, embedder model.Embedder, backend memoryBackend) (*memory.Vector, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%s memory requires an embedder", cfg.Memory.Strategy)
	}
	if backend == nil {
		backend = vectorstore.NewInMemory()
	}
	return memory.NewVector(embedder, backend, func(o *memory.VectorOptions) {
		o.MinScore = cfg.Memory.MinScore
		o.RecallLimit = cfg.Memory.RecallLimit
	}), nil
}
