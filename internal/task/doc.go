// Package task manages background job queuing and processing. Generation
// tasks run here so that a long-running stream of model calls never blocks
// HTTP request handling and the number of concurrent generators stays bounded.
package task
