package signature

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// walletFile is the on disk wallet format. Only priv is required to
// reconstruct the keypair. There is no passphrase protection.
type walletFile struct {
	Priv string `json:"priv"`
	Pub  string `json:"pub,omitempty"`
}

// LoadWallet reads the wallet file at the specified path and reconstructs
// the identity from the private scalar.
func LoadWallet(path string) (*Identity, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wf walletFile
	if err := json.Unmarshal(content, &wf); err != nil {
		return nil, fmt.Errorf("decode wallet %s: %w", path, err)
	}

	if wf.Priv == "" {
		return nil, errors.New("wallet is missing the priv field")
	}

	return FromPrivateHex(wf.Priv)
}

// SaveWallet writes the identity to the specified path, creating any
// missing directories.
func SaveWallet(path string, id *Identity) error {
	if id == nil || id.privateKey == nil {
		return ErrNoPrivateKey
	}

	wf := walletFile{
		Priv: id.PrivateHex(),
		Pub:  id.Address(),
	}

	data, err := json.Marshal(wf)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
