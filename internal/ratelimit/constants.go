// Package ratelimit provides rate limiting constants for media platform API throttle scopes.
package ratelimit

// Platform API Throttle Limits
//
// The platform throttles by scope: every endpoint belongs to a scope and all
// endpoints in a scope share one budget. Exceeding a budget blocks the whole
// scope until the window rolls over, so client-side limiting pays for itself.

// Base rate limits (from platform documentation)
const (
	// AdminScopeLimitPerHour is the rate limit for the admin API scope.
	// Covers resource listing, folder listing, detail fetches and deletes.
	// This is the DEFAULT scope for API calls.
	AdminScopeLimitPerHour = 7200 // 2 requests per second

	// SearchScopeLimitPerHour is the rate limit for the search API.
	// Applies to: POST /resources/search
	SearchScopeLimitPerHour = 18000 // 5 requests per second

	// UploadScopeLimitPerHour is the rate limit for the upload API.
	// Applies to: POST /{resource_type}/upload
	UploadScopeLimitPerHour = 36000 // 10 requests per second
)

// Target percentages
//
// We target 85% of the hard limit:
// 1. 15% safety margin prevents hitting the hard limit (which blocks the
//    scope for the rest of the window)
// 2. Maximizes throughput while accounting for concurrent operations
const (
	AdminScopeTargetPercent  = 85
	SearchScopeTargetPercent = 85
	UploadScopeTargetPercent = 85
)

// Calculated target rates (requests per second)
const (
	// AdminScopeRatePerSec is 85% of 2 req/sec = 1.7 req/sec
	AdminScopeRatePerSec = 1.7

	// SearchScopeRatePerSec is 85% of 5 req/sec = 4.25 req/sec
	SearchScopeRatePerSec = 4.25

	// UploadScopeRatePerSec is 85% of 10 req/sec = 8.5 req/sec
	UploadScopeRatePerSec = 8.5
)

// Burst capacities (tokens)
//
// Burst capacity allows rapid initial operations before settling into the
// sustained rate. A tree expand fans out into several folder listings at
// once, so the admin bucket starts large enough to absorb a full expand.
const (
	// AdminScopeBurstCapacity allows ~60 seconds of burst operations
	// Calculation: 100 tokens / 1.7 req/sec = 58.8 seconds
	AdminScopeBurstCapacity = 100

	// SearchScopeBurstCapacity allows ~12 seconds of burst operations
	// Calculation: 50 tokens / 4.25 req/sec = 11.8 seconds
	SearchScopeBurstCapacity = 50

	// UploadScopeBurstCapacity allows ~6 seconds of burst operations
	// Calculation: 50 tokens / 8.5 req/sec = 5.9 seconds
	// Upload jobs are long-lived, so a small bucket is plenty.
	UploadScopeBurstCapacity = 50
)
