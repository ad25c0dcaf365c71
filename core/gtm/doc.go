// Package gtm is a thin client for the Google Tag Manager API v2.
//
// It exposes the Service interface the workspace reconciler consumes: list
// with internal pagination, create/update/delete with fingerprint-based
// optimistic concurrency, built-in variable toggles, and folder entity
// moves. All calls go through the retry layer; the error helpers classify
// responses into retryable throttles, "resource not available for this
// container type" rejections, and stale-fingerprint conflicts.
package gtm
