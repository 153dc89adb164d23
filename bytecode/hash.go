package bytecode

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is the SHA-256 content hash of an instruction sequence.
type Digest [32]byte

// String returns the digest in hex.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 8 bytes of the digest in hex.
func (d Digest) Short() string { return hex.EncodeToString(d[:8]) }

// HashCode hashes the canonical CBOR encoding of code. Identical instruction
// sequences hash identically regardless of where they sit in a program.
func HashCode(code []Instruction) Digest {
	if code == nil {
		code = []Instruction{}
	}
	data, err := cborEncMode.Marshal(code)
	if err != nil {
		// Instructions are plain integers and bools.
		panic("bytecode: hash: " + err.Error())
	}
	return sha256.Sum256(data)
}
