package bytecode

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/skein/value"
)

// ImageVersion is the current image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic prefixes every image file: "SKBC" (SKein ByteCode).
var ImageMagic = []byte{'S', 'K', 'B', 'C'}

// Image is a compiled program together with everything needed to load it:
// the global slot names in frame order and the constant arena indexed by
// handle.
type Image struct {
	Version   uint16        `cbor:"1,keyasint"`
	SessionID string        `cbor:"2,keyasint,omitempty"`
	Globals   []string      `cbor:"3,keyasint,omitempty"`
	Constants []value.Value `cbor:"4,keyasint,omitempty"`
	Code      []Instruction `cbor:"5,keyasint"`
}

// Canonical mode keeps encoding deterministic.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalImage serializes an image: magic bytes followed by CBOR.
func MarshalImage(img *Image) ([]byte, error) {
	payload, err := cborEncMode.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal image: %w", err)
	}
	out := make([]byte, 0, len(ImageMagic)+len(payload))
	out = append(out, ImageMagic...)
	return append(out, payload...), nil
}

// UnmarshalImage deserializes an image produced by MarshalImage.
func UnmarshalImage(data []byte) (*Image, error) {
	if !bytes.HasPrefix(data, ImageMagic) {
		return nil, fmt.Errorf("bytecode: not an image (bad magic)")
	}
	var img Image
	if err := cbor.Unmarshal(data[len(ImageMagic):], &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("bytecode: unsupported image version %d (want %d)", img.Version, ImageVersion)
	}
	return &img, nil
}

// WriteImageFile writes img to path.
func WriteImageFile(path string, img *Image) error {
	data, err := MarshalImage(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ReadImageFile reads an image from path.
func ReadImageFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	img, err := UnmarshalImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
