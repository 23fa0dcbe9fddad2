// Package password hashes account passwords for the development backend
// with Argon2id.
//
// Hashes use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Parameters travel with each hash, so [Argon2.NeedsUpgrade] can tell when a
// stored hash predates the current configuration.
//
// # What this package must NOT do
//
//   - Store passwords or hashes.
//   - Log plaintext passwords.
package password
