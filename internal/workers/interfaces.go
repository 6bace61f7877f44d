// Package workers provides abstractions for running the engine's
// background workers in a unified way.
// It defines the Worker interface and a Workers aggregate that starts
// and stops a set of workers together.
package workers

// Worker is implemented by any background loop the engine owns, such
// as the outbox sweeper or the connectivity monitor.
//
// Run starts the worker; implementations are expected to spawn their
// goroutine internally and return immediately. Stop requests shutdown
// and blocks until the worker's loop has exited.
type Worker interface {
	Run()
	Stop()
}
