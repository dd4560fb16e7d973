// Package llm opens per-task chat clients for the generation service. It
// picks the provider implementation named by a request and wraps every
// client with Prometheus instrumentation and token accounting.
package llm
