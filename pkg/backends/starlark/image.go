package starlark

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Module images carry serialized Starlark programs through opaque []byte
// plumbing. The container is a magic tag, a length-prefixed JSON header with
// the module's identity, then the program bytes.

const imageMagic = "svmod1\n"

// imageHeader identifies the module stored in an image.
type imageHeader struct {
	// Module is the synthetic module name assigned at emit time.
	Module string `json:"module"`

	// Path is the source document the module was compiled from.
	Path string `json:"path,omitempty"`
}

// debugSidecar is the optional symbol stream emitted next to an image: the
// identity needed to map a loaded module back to the text it was compiled
// from.
type debugSidecar struct {
	Module string `json:"module"`
	Path   string `json:"path"`
	Source string `json:"source"`
}

// encodeImage wraps a serialized program in the image container.
func encodeImage(h imageHeader, program []byte) ([]byte, error) {
	header, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image header: %w", err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(imageMagic)+4+len(header)+len(program)))
	buf.WriteString(imageMagic)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(header)))
	buf.Write(size[:])
	buf.Write(header)
	buf.Write(program)
	return buf.Bytes(), nil
}

// decodeImage splits an image into its header and program bytes.
func decodeImage(image []byte) (imageHeader, []byte, error) {
	var h imageHeader
	if !bytes.HasPrefix(image, []byte(imageMagic)) {
		return h, nil, fmt.Errorf("not a module image: bad magic")
	}
	rest := image[len(imageMagic):]
	if len(rest) < 4 {
		return h, nil, fmt.Errorf("not a module image: truncated header")
	}
	size := binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]
	if uint64(len(rest)) < uint64(size) {
		return h, nil, fmt.Errorf("not a module image: truncated header")
	}
	if err := json.Unmarshal(rest[:size], &h); err != nil {
		return h, nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	return h, rest[size:], nil
}
