// Package harness runs corpus conformance suites.
//
// A suite is a YAML file naming a corpus directory and the expected verdict
// for each rule of interest. The harness verifies the corpus and reports
// every divergence between expected and actual outcomes, so a semantics
// change that flips a verdict is caught by the suite rather than by a user.
//
// Golden report fixtures pin the full text rendering of a report; regenerate
// them with `go test ./internal/harness -update` after an intentional change.
package harness
