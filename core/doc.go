// Package core defines the shared value types exchanged between the agent
// engine, the model adapters and the memory subsystem: role-tagged messages,
// tool call descriptors and their correlation identifiers. The types here are
// plain data; behavior lives in the packages that produce and consume them.
package core
