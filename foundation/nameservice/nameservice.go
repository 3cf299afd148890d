// Package nameservice reads a folder of wallet files and creates a name
// service lookup for the addresses they hold.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/signature"
)

// walletExt is the file extension used for wallet files.
const walletExt = ".wallet"

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	addresses map[database.Address]string
}

// New constructs a name service with the wallets found under root. The
// name of each address is the wallet file name without its extension. A
// missing root produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[database.Address]string),
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if info.IsDir() || path.Ext(fileName) != walletExt {
			return nil
		}

		id, err := signature.LoadWallet(fileName)
		if err != nil {
			return err
		}

		ns.addresses[database.Address(id.Address())] = strings.TrimSuffix(path.Base(fileName), walletExt)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address database.Address) string {
	name, exists := ns.addresses[address]
	if !exists {
		return string(address)
	}
	return name
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[database.Address]string {
	cpy := make(map[database.Address]string, len(ns.addresses))
	for address, name := range ns.addresses {
		cpy[address] = name
	}
	return cpy
}
