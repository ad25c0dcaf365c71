// Package normalize prepares GTM entity payloads for comparison.
//
// It provides the four pure building blocks the diff and sync engines share:
//
//   - StripDynamic removes server-managed identifiers and declaration-only
//     convenience fields from a payload, at any depth.
//   - Matches is the one-directional subset test: current satisfies desired
//     when every field desired specifies agrees, with type-aware array
//     semantics (primitive sets, identity-keyed collections, ordered blocks).
//   - Hash computes a stable SHA-256 digest over the normalized payload,
//     used for content-hash pins.
//   - MergeDesired folds desired fields into a copy of the current payload
//     when building an update body.
//
// All functions operate on the plain map[string]any / []any / scalar shapes
// produced by YAML and JSON decoding and never mutate their inputs.
package normalize
