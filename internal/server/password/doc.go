// Package password hashes and verifies user passwords.
//
// Stored hashes are self-describing strings: bcrypt modular-crypt
// ("$2a$12$...") or argon2id PHC ("$argon2id$v=19$m=...,t=...,p=...$salt$key").
// A MultiHasher produces hashes with the configured algorithm and verifies
// any supported form, so switching algorithms does not lock out existing
// accounts.
//
// Verification never fails loudly: an unknown, truncated or otherwise
// malformed stored hash is simply a mismatch.
package password
