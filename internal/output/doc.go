// Package output turns analysis results into stable, presentation-ready data.
//
// A Report carries every decimal as a string so that no precision is lost
// on the way to JSON, and so that identical analyses encode to identical
// bytes. Critical values are rendered with at least three places (0.970),
// sample values keep the digits they were entered with (52.0), and
// statistics are truncated to six places.
//
// # JSON Encoding Rules
//
// DeterministicEncode produces byte-identical outputs by:
//
//  1. Stable key ordering: object keys are sorted alphabetically
//  2. Decimals as strings: no float formatting is involved
//  3. No HTML escaping and no trailing newline
package output
