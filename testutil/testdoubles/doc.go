// Package testdoubles provides spies and fakes for the observability interfaces and the
// DocumentStore, shared by the tests of all packages.
//
// The spies record calls so that tests can verify instrumentation without any real backend,
// and DocumentStoreSpy keeps documents in memory with injectable failures.
package testdoubles
