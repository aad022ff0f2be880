package overlay

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/spf13/viper"
)

// LoadIdentityFromConfig reads host.private_key (hex-encoded ed25519
// seed) from viper, mirroring the teacher's peering.NewPeersFromConfig
// key handling.
func LoadIdentityFromConfig() (crypto.PrivKey, error) {
	pkStr := viper.GetString("host.private_key")
	if pkStr == "" {
		return GenerateIdentity()
	}
	pkBin, err := hex.DecodeString(pkStr)
	if err != nil {
		return nil, fmt.Errorf("host.private_key: wrong id private key: %v", err)
	}
	return crypto.UnmarshalEd25519PrivateKey(pkBin)
}

// GenerateIdentity creates a fresh ed25519 keypair, used when no
// private key is configured (single-node dev runs, tests).
func GenerateIdentity() (crypto.PrivKey, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}
	return crypto.UnmarshalEd25519PrivateKey(priv)
}

func PeerIDFromPrivKey(priv crypto.PrivKey) (peer.ID, error) {
	return peer.IDFromPrivateKey(priv)
}

// ShortPeerIDString trims id down to the trailing 8 characters for
// log lines, matching the teacher's peering.ShortPeerIDString.
func ShortPeerIDString(id peer.ID) string {
	s := id.String()
	if len(s) <= 8 {
		return s
	}
	return ".." + s[len(s)-8:]
}
