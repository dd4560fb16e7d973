// Package generation runs streaming text-generation tasks against external
// LLM chat APIs. A task is created from a Request, claimed by exactly one
// generator running on the shared task runner, and reports every state change
// as a Snapshot frame that stream subscribers receive through the event hub.
//
// Provider clients live under internal/platform and reach this package only
// through the ClientFactory and Completer interfaces, so a task owns its
// client for exactly the lifetime of its generator.
package generation
