// Package core provides the foundational domain types and execution contexts
// used by coachflow. It defines the core abstractions for:
//
//   - Messages (role-based content with a closed part union)
//   - Conversations (the append-only transcript of one orchestration run)
//   - RunContext (scoped per-request execution environment)
//   - RoundLimiter (the model-call bound for one run)
//
// The package intentionally keeps implementation concerns (model access,
// tool execution, streaming transport) out of scope, exposing small types
// the other packages compose.
package core
