// Package testutil provides test fixtures and utilities.
//
// This package contains embedded nginx site fixtures and a fake remote
// command runner for unit tests.
//
// # Fixtures
//
// Site configs are embedded using go:embed:
//
//	fixtures/basic.conf           // one server block with one location
//	fixtures/multi_server.conf    // http redirect block and https block
//	fixtures/crlf.conf            // CRLF line endings
//	fixtures/trailing_blank.conf  // blank lines after the closing brace
//	fixtures/no_server.conf       // no closing brace at the end
//
// # Loading Fixtures
//
//	text := testutil.Site("basic.conf")
//	path := testutil.WriteFixture(t, dir, "basic.conf")
//	data, err := testutil.LoadFixture("crlf.conf")
//
// # Fake Commander
//
// Commander records the commands a workflow runs and fails chosen programs:
//
//	cmd := testutil.NewCommander()
//	cmd.FailOn("nginx", "nginx: [emerg] unexpected end of file")
//	runner.Commander = cmd
//	// ...
//	cmd.CallLines() // []string{"nginx -t"}
package testutil
