// Package signature provides the identity and signing support for the
// blockchain. Keys live on the secp256k1 curve and an address is the hex
// encoding of the uncompressed public key.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// Set of errors returned by the signature package.
var (
	ErrNoPrivateKey     = errors.New("no private key bound to identity")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// privateKeyHexLength is the number of hex characters in a 32 byte scalar.
const privateKeyHexLength = 64

// =============================================================================

// Identity represents a keypair and the address derived from it.
type Identity struct {
	privateKey *ecdsa.PrivateKey
	address    string
}

// Generate produces an identity with a fresh keypair.
func Generate() (*Identity, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return newIdentity(privateKey), nil
}

// FromPrivateHex reconstructs an identity from the hex encoded private
// scalar. Wallet files written by other implementations may drop leading
// zeros so the value is padded before decoding.
func FromPrivateHex(privHex string) (*Identity, error) {
	privHex = strings.TrimPrefix(strings.TrimSpace(privHex), "0x")
	if len(privHex) > privateKeyHexLength {
		return nil, fmt.Errorf("private key too long: %d hex characters", len(privHex))
	}
	privHex = strings.Repeat("0", privateKeyHexLength-len(privHex)) + privHex

	privateKey, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}

	return newIdentity(privateKey), nil
}

// NewMnemonic returns a fresh 12 word BIP-39 phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("entropy: %w", err)
	}

	return bip39.NewMnemonic(entropy)
}

// FromMnemonic derives an identity from a BIP-39 phrase. The private scalar
// is the SHA-256 of the BIP-39 seed, so the same phrase and passphrase
// always produce the same address.
func FromMnemonic(mnemonic string, passphrase string) (*Identity, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, passphrase)
	scalar := sha256.Sum256(seed)

	privateKey, err := crypto.ToECDSA(scalar[:])
	if err != nil {
		return nil, fmt.Errorf("derive private key: %w", err)
	}

	return newIdentity(privateKey), nil
}

func newIdentity(privateKey *ecdsa.PrivateKey) *Identity {
	return &Identity{
		privateKey: privateKey,
		address:    hex.EncodeToString(crypto.FromECDSAPub(&privateKey.PublicKey)),
	}
}

// Address returns the hex encoded public key for the identity.
func (id *Identity) Address() string {
	if id == nil {
		return ""
	}
	return id.address
}

// PrivateHex returns the hex encoded private scalar.
func (id *Identity) PrivateHex() string {
	if id == nil || id.privateKey == nil {
		return ""
	}
	return hex.EncodeToString(crypto.FromECDSA(id.privateKey))
}

// Sign produces a DER encoded signature over the SHA-256 digest of the
// message.
func (id *Identity) Sign(message []byte) ([]byte, error) {
	if id == nil || id.privateKey == nil {
		return nil, ErrNoPrivateKey
	}

	digest := sha256.Sum256(message)

	privateKey := secp256k1.PrivKeyFromBytes(crypto.FromECDSA(id.privateKey))
	defer privateKey.Zero()

	sig := dcrecdsa.Sign(privateKey, digest[:])

	return sig.Serialize(), nil
}

// =============================================================================

// ParseAddress validates the address is a hex encoded public key on the
// curve.
func ParseAddress(address string) error {
	_, err := parsePublicKey(address)
	return err
}

// Verify checks the DER encoded signature against the SHA-256 digest of the
// message using the public key recovered from the address.
func Verify(address string, message []byte, der []byte) error {
	publicKey, err := parsePublicKey(address)
	if err != nil {
		return err
	}

	sig, err := dcrecdsa.ParseDERSignature(der)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	digest := sha256.Sum256(message)
	if !sig.Verify(digest[:], publicKey) {
		return ErrInvalidSignature
	}

	return nil
}

func parsePublicKey(address string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	publicKey, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	return publicKey, nil
}
