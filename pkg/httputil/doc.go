// Package httputil provides HTTP infrastructure for distributor API clients.
//
// # Overview
//
// This package provides the pieces shared by every distributor client:
//
//   - [Retry]: Automatic retry with linearly increasing backoff
//   - [Pool]: A pool of request identities rotated across attempts
//   - [Semaphore]: A bounded concurrency gate per distributor
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - API-level error envelopes inside 200 responses
//
// Only errors wrapped with [RetryableError] trigger a retry; validation
// errors and not-found results are returned immediately.
//
// # Identity rotation
//
// Some distributor endpoints correlate failures with a client identity
// (cookies, header ordering, TLS session). [Pool] hands out an [Identity]
// per attempt; the retry loop in pkg/integrations acquires a fresh one on
// every retry to decorrelate consecutive attempts.
//
// # Defaults
//
//   - Max attempts: 4 (1 initial + 3 retries)
//   - Backoff: 300ms, growing linearly per attempt
package httputil
