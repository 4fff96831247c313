// Package model defines the normalized request/response contract between the
// orchestrator and language model providers, plus a Resolver for looking up
// configured adapters by identifier.
//
// Provider adapters live in subpackages (openai, anthropic). A ScriptedModel
// is provided for tests and examples that need deterministic turns without
// network access.
package model
