package signature_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/powledger/powledger/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// generatorAddress is the uncompressed secp256k1 generator point, which is
// the public key for the private scalar 1.
const generatorAddress = "04" +
	"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
	"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"

// =============================================================================

func Test_Signing(t *testing.T) {
	t.Log("Given the need to sign and verify messages.")
	{
		id, err := signature.Generate()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate an identity: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate an identity.", success)

		if len(id.Address()) != 130 {
			t.Fatalf("\t%s\tShould get an uncompressed public key address: got %d chars", failed, len(id.Address()))
		}
		t.Logf("\t%s\tShould get an uncompressed public key address.", success)

		msg := []byte("nullbob501700000000000")

		sig, err := id.Sign(msg)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the message: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to sign the message.", success)

		if err := signature.Verify(id.Address(), msg, sig); err != nil {
			t.Fatalf("\t%s\tShould be able to verify the signature: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to verify the signature.", success)

		if err := signature.Verify(id.Address(), []byte("something else"), sig); !errors.Is(err, signature.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject a signature for a different message: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a signature for a different message.", success)

		other, err := signature.Generate()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a second identity: %s", failed, err)
		}
		if err := signature.Verify(other.Address(), msg, sig); err == nil {
			t.Fatalf("\t%s\tShould reject a signature under another address.", failed)
		}
		t.Logf("\t%s\tShould reject a signature under another address.", success)
	}
}

func Test_NoPrivateKey(t *testing.T) {
	var id *signature.Identity

	if _, err := id.Sign([]byte("data")); !errors.Is(err, signature.ErrNoPrivateKey) {
		t.Fatalf("Should fail to sign without a private key, got %v", err)
	}
}

func Test_PrivateHexPadding(t *testing.T) {
	short, err := signature.FromPrivateHex("01")
	if err != nil {
		t.Fatalf("Should be able to load a short private key: %s", err)
	}

	full, err := signature.FromPrivateHex("0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("Should be able to load a full private key: %s", err)
	}

	if short.Address() != full.Address() {
		t.Logf("got: %s", short.Address())
		t.Logf("exp: %s", full.Address())
		t.Fatalf("Should get the same address for padded and unpadded keys.")
	}

	if full.Address() != generatorAddress {
		t.Logf("got: %s", full.Address())
		t.Logf("exp: %s", generatorAddress)
		t.Fatalf("Should get the generator point for the scalar 1.")
	}
}

func Test_ParseAddress(t *testing.T) {
	tt := []struct {
		name    string
		address string
		valid   bool
	}{
		{name: "generator", address: generatorAddress, valid: true},
		{name: "not-hex", address: "zz", valid: false},
		{name: "empty", address: "", valid: false},
		{name: "truncated", address: generatorAddress[:64], valid: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := signature.ParseAddress(tst.address)
			if (err == nil) != tst.valid {
				t.Fatalf("Test %s:\tShould get valid=%v, got err=%v", tst.name, tst.valid, err)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Mnemonic(t *testing.T) {
	mnemonic, err := signature.NewMnemonic()
	if err != nil {
		t.Fatalf("Should be able to create a mnemonic: %s", err)
	}

	id1, err := signature.FromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("Should be able to derive an identity: %s", err)
	}

	id2, err := signature.FromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("Should be able to derive an identity twice: %s", err)
	}

	if id1.Address() != id2.Address() {
		t.Fatalf("Should derive the same address from the same mnemonic.")
	}

	id3, err := signature.FromMnemonic(mnemonic, "secret")
	if err != nil {
		t.Fatalf("Should be able to derive an identity with a passphrase: %s", err)
	}

	if id1.Address() == id3.Address() {
		t.Fatalf("Should derive a different address with a passphrase.")
	}

	if _, err := signature.FromMnemonic("not a real phrase", ""); err == nil {
		t.Fatalf("Should reject an invalid mnemonic.")
	}
}

func Test_Wallet(t *testing.T) {
	id, err := signature.Generate()
	if err != nil {
		t.Fatalf("Should be able to generate an identity: %s", err)
	}

	path := filepath.Join(t.TempDir(), "wallets", "alice.wallet")
	if err := signature.SaveWallet(path, id); err != nil {
		t.Fatalf("Should be able to save the wallet: %s", err)
	}

	loaded, err := signature.LoadWallet(path)
	if err != nil {
		t.Fatalf("Should be able to load the wallet: %s", err)
	}

	if loaded.Address() != id.Address() {
		t.Logf("got: %s", loaded.Address())
		t.Logf("exp: %s", id.Address())
		t.Fatalf("Should get back the same address.")
	}

	sig, err := loaded.Sign([]byte("hello"))
	if err != nil {
		t.Fatalf("Should be able to sign with the loaded wallet: %s", err)
	}

	if err := signature.Verify(id.Address(), []byte("hello"), sig); err != nil {
		t.Fatalf("Should verify with the original address: %s", err)
	}
}
