// Package credstore keeps the session's secrets (token bundle, cached user
// profile, biometric flag) in a local encrypted vault.
//
// Each secret lives under a service name and is encrypted with AES-256-GCM
// under a key derived from a device-bound secret file. Secrets may be gated
// behind a biometric check; a gated secret saved under one enrollment becomes
// unreadable, and is removed, once the enrollment changes.
package credstore
