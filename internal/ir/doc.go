// Package ir provides the canonical JSON form of simulation snapshots and
// the content digests computed over it.
//
// Key constraints:
//   - NO float values in canonical output; quantities are integers
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Strings are NFC normalized at the serialization boundary
//   - All JSON tags use snake_case
package ir
