package domain

// Zero overwrites key material in place. Call it before a key, plaintext
// secret or derived key goes out of scope.
func Zero(b []byte) {
	clear(b)
}
