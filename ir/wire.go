package ir

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/anhlt/micropyc/errors"
)

// cborEncMode uses canonical mode for deterministic encoding, so the
// same declaration set always produces the same interchange bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ir: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// DeclSet is the interchange unit the external stub parser hands to the
// compiler: one or more logical modules.
type DeclSet struct {
	Modules []*Module `cbor:"modules"`
}

// Marshal serializes a DeclSet to canonical CBOR bytes.
func Marshal(ds *DeclSet) ([]byte, error) {
	return cborEncMode.Marshal(ds)
}

// Unmarshal deserializes a DeclSet from CBOR bytes and resolves every
// module in it.
func Unmarshal(data []byte) (*DeclSet, error) {
	var ds DeclSet
	if err := cbor.Unmarshal(data, &ds); err != nil {
		return nil, errors.Load("unmarshal declaration set", err)
	}
	for _, m := range ds.Modules {
		if err := m.Resolve(); err != nil {
			return nil, err
		}
	}
	return &ds, nil
}

// LoadFile reads and resolves a declaration set from disk.
func LoadFile(path string) (*DeclSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("read %s", path), err)
	}
	return Unmarshal(data)
}

// WriteFile serializes a declaration set to disk.
func WriteFile(path string, ds *DeclSet) error {
	data, err := Marshal(ds)
	if err != nil {
		return errors.Load(fmt.Sprintf("marshal declaration set for %s", path), err)
	}
	return os.WriteFile(path, data, 0o644)
}
