// Package agentloop provides a high-level façade over the agent execution
// engine and its supporting abstractions (models, tools, prompts and memory).
// Most applications interact with this package by:
//  1. Creating a model via one of the provider adapters (model/openai,
//     model/anthropic, model/ollama)
//  2. Constructing an Agent with NewAgent, attaching tools, sub-agents and
//     memory stores
//  3. Calling Run (or Stream) with the user's request
//
// All defaults are safe for local development: a finite loop ceiling, a tool
// timeout, a no-op logger. Production deployments typically supply a
// structured logger and tenant-scoped memory stores.
package agentloop

import (
	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
)

// NewAgent constructs an Agent. It is a thin alias for agent.New kept here so
// simple programs only import the root package plus a provider adapter.
func NewAgent(name string, llm model.Model, optFns ...func(o *agent.Options)) (*agent.Agent, error) {
	return agent.New(name, llm, optFns...)
}

// NewMemoryFromConfig builds a memory store from configuration. Strategies
// needing an LLM or embedder receive them as arguments; pass nil for
// strategies that do not use them.
func NewMemoryFromConfig(cfg *config.Config, llm model.Model, embedder model.Embedder, store memoryBackend) (memory.Store, error) {
	return newMemory(cfg, llm, embedder, store)
}

// DefaultLogger returns the slog-backed logger used across the examples.
func DefaultLogger() logging.Logger {
	return logging.NewDefaultSlogLogger()
}
