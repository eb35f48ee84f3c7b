package store

// Reserved entry keys. They live in the same store as user entries but
// are written inside the header block and excluded from user-facing
// enumeration.
const (
	HashKey       = "vault.password.hash"  // master password verification hash
	OSPasswordKey = "vault.password.os"    // OS-wrapped master password handle
	OSSelfTestKey = "vault.password.check" // ciphertext proving an OS-unlocked key is right
	VersionKey    = "vault.version"        // file format version tag
)

// PlainPasswordKey is the well-known key of the in-file plaintext
// bootstrap password. It is deliberately not reserved: it parses as a
// normal entry and is deleted once consumed.
const PlainPasswordKey = "vault.password.plain"

// FormatVersion is the current file format version string.
const FormatVersion = "1"

// reservedOrder fixes the serialization order of the header block.
var reservedOrder = []string{HashKey, OSPasswordKey, OSSelfTestKey, VersionKey}

// IsReserved reports whether key names one of the header metadata entries.
func IsReserved(key Key) bool {
	for _, r := range reservedOrder {
		if key.Equal(ParseKey(r)) {
			return true
		}
	}
	return false
}

// Entry is a single (key, value, encrypted) record. Encrypted entries
// hold ciphertext produced under the vault's session key, never plaintext.
type Entry struct {
	Key       Key
	Value     string
	Encrypted bool
}
