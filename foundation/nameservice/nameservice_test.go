package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/signature"
	"github.com/powledger/powledger/foundation/nameservice"
)

func Test_NameService(t *testing.T) {
	root := t.TempDir()

	id, err := signature.FromPrivateHex("9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93")
	if err != nil {
		t.Fatalf("Should load the private key: %s", err)
	}

	if err := signature.SaveWallet(filepath.Join(root, "nested", "kennedy.wallet"), id); err != nil {
		t.Fatalf("Should save the wallet: %s", err)
	}

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatalf("Should write an unrelated file: %s", err)
	}

	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("Should construct the name service: %s", err)
	}

	addr := database.Address(id.Address())
	if name := ns.Lookup(addr); name != "kennedy" {
		t.Fatalf("Should resolve the wallet name: got %q", name)
	}

	if name := ns.Lookup("unknown"); name != "unknown" {
		t.Fatalf("Should fall back to the address: got %q", name)
	}

	if cpy := ns.Copy(); len(cpy) != 1 || cpy[addr] != "kennedy" {
		t.Fatalf("Should copy the known addresses: got %v", cpy)
	}
}

func Test_MissingFolder(t *testing.T) {
	ns, err := nameservice.New(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Should tolerate a missing folder: %s", err)
	}

	if len(ns.Copy()) != 0 {
		t.Fatal("Should have no known addresses.")
	}
}
