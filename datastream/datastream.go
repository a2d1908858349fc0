// Package datastream implements the newline-framed streaming protocol
// spoken by the chat completion endpoint, plus an HTTP client for it.
//
// The stream is a sequence of newline-terminated records of the form
// <tag>:<payload>. Tag "0" carries an incremental text delta whose payload
// is a JSON string literal. Records with any other tag are recognized and
// skipped without error, so new record types can be introduced without
// breaking old clients.
package datastream

// Record tags understood by this package.
const (
	// TagText marks a record carrying an incremental text delta.
	TagText = "0"

	// TagData marks a record carrying auxiliary JSON metadata. The client
	// skips it; the server emits one as its final frame.
	TagData = "2"
)
