package testutil

import "crypto/ed25519"

// TestPrv and TestPub form a deterministic signing pair for covenant
// tests. Never use these outside of tests.
var (
	TestPrv ed25519.PrivateKey
	TestPub ed25519.PublicKey
)

func init() {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	TestPrv = ed25519.NewKeyFromSeed(seed)
	TestPub = TestPrv.Public().(ed25519.PublicKey)
}
