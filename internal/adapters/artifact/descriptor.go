package artifact

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

const descriptorVersion = 1

// encMode uses Core Deterministic Encoding so the same artifact always
// produces an identical descriptor.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("artifact: CBOR encoder initialization failed: " + err.Error())
	}
}

// Descriptor is the content of artifact.cbor.
type Descriptor struct {
	Version          int          `cbor:"version"`
	PackageName      string       `cbor:"package"`
	SourceModule     string       `cbor:"source_module"`
	StorePackageName string       `cbor:"store_package"`
	InjectedResource uint32       `cbor:"injected_resource"`
	EntryCount       int          `cbor:"entry_count"`
	Files            []FileDigest `cbor:"files"`
}

type FileDigest struct {
	Path   string `cbor:"path"`
	Size   int64  `cbor:"size"`
	BLAKE3 []byte `cbor:"blake3"`
}

func (d FileDigest) Hex() string {
	return hex.EncodeToString(d.BLAKE3)
}

func digest(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}

func encodeDescriptor(d Descriptor) ([]byte, error) {
	data, err := encMode.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode artifact descriptor: %w", err)
	}
	return data, nil
}

func ReadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read artifact descriptor: %w", err)
	}

	var d Descriptor
	if err := cbor.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("decode artifact descriptor: %w", err)
	}
	if d.Version > descriptorVersion {
		return Descriptor{}, fmt.Errorf("unsupported artifact descriptor version %d (current %d)", d.Version, descriptorVersion)
	}
	return d, nil
}
