// Package config handles configuration for the server component.
//
// Values are layered, later sources winning:
//
//	defaults -> JSON file (-c / -config) -> GOPHAUTH_* environment -> flags
//
// Validate must succeed before the configuration is used; its errors wrap
// common.ErrConfiguration and are fatal at startup.
package config
