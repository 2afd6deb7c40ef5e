// Package password is the one-way credential hashing contract. Callers depend
// on Hash/Verify, not on the underlying algorithm or its cost parameters.
package password

import "github.com/alexedwards/argon2id"

func Hash(plaintext string) (string, error) {
	return argon2id.CreateHash(plaintext, argon2id.DefaultParams)
}

func Verify(plaintext, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plaintext, hash)
	return err == nil && ok
}
