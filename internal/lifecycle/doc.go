// Package lifecycle drives structural operations on a project through
// their two-phase protocol.
//
// Every invocation moves through a fixed state machine:
//
//	Idle -> Classifying -> PreNotified -> AwaitingHostIO -> PostNotified -> Done
//	   \________________________\______________\______________> Failed
//
// Begin classifies the project's files and fires the pre-notification.
// The host then performs the physical I/O using Files as the authoritative
// list, and reports the result with Complete (or Fail). Rename reuses the
// move capability's classification.
//
// Each operation opens a span named crxproject.operation.<command> and
// records the crxproject.operations.* metrics.
package lifecycle
