// Package google provides OAuth2 authentication and token management for
// Google APIs.
//
// Tokens are cached per account under the user cache directory, so a single
// machine can hold credentials for several Google accounts side by side. The
// TokenProvider interface allows other token sources to be plugged in.
package google
