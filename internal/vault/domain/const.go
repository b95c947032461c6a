package domain

// Algorithm names an AEAD cipher used by the vault.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the length in bytes of every vault key.
const KeySize = 32

// CiphertextPrefix versions the ciphertext encoding "v1:" + base64(nonce || sealed).
const CiphertextPrefix = "v1:"

// DefaultKeyName is the store name of the key used when none is configured.
const DefaultKeyName = "fieldguard-sensitive-data"

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	return a == AESGCM || a == ChaCha20
}
