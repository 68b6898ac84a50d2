// Package config loads per-service configuration from the environment.
//
// Every service takes its settings from LEADFLOW_-prefixed environment
// variables, with a .env file honored when present. The JWT signing secret is
// loaded here and injected explicitly into the token issuer and every
// verifier; it is never read from a global elsewhere.
package config
