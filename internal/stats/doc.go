// Package stats aggregates a user's shares, requests and audit activity.
//
// Reports are computed from the store on every call and use derived share
// status, so an active share past its expiry counts as expired.
package stats
