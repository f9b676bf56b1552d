// Package otp issues and verifies short-lived one-time codes.
//
// Each (purpose, identifier) pair holds at most one live code; issuing again
// replaces it. Verification is a single atomic step in redis, so a code can be
// consumed at most once even under concurrent attempts. Expiry is measured from
// issuance against the service clock; the redis key TTL only reclaims memory.
package otp
