// Package orchestrator coordinates conversation turns end to end.
//
// # Overview
//
// The orchestrator sits between the HTTP handlers and the assistant
// service. For each turn it resolves the session, classifies the turn as
// guided or free, gates customer turns on complete claims, intercepts
// pagination commands, builds the outbound request, persists the message
// log, and recovers failures into a fixed fallback message.
//
// # Entry Points
//
//   - SubmitFreeText: typed messages, including "página N" navigation
//   - SubmitStructuredAction: predefined quick actions with an intent
//   - SubmitResultClick: clicks on clickable result items
//   - GoToPage: explicit page jumps from pagination controls
//   - ResetSession / ClearHistory / History: session management
//
// # Failure Recovery
//
// A failed exchange never surfaces as an error to the caller. The turn
// result carries the fallback assistant message with Failed set, the
// error callback fires exactly once, and nothing is retried. Only
// validation failures (incomplete customer claims, unknown intents)
// return errors, and those never reach the network.
//
// # Concurrency
//
// Turns for one conversation scope are serialized; different scopes
// proceed independently. ResetSession intentionally skips the turn lock
// so an in-flight turn completes under the session identifier captured
// when it was sent.
package orchestrator
