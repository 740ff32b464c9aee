package pass

import (
	"fmt"
	"strings"
	"time"
)

// File is a named blob stored as a top-level archive entry.
type File struct {
	Name string
	Data []byte
}

// Payload is the ordered, in-memory set of pass files that the manifest covers.
//
// Once the manifest has been built no file may be added.
type Payload struct {
	files  []File
	index  map[string]int
	sealed bool
}

func NewPayload() *Payload {
	return &Payload{index: make(map[string]int)}
}

// Add appends a file. Names must be flat, unique and not reserved for the manifest or signature.
func (p *Payload) Add(name string, data []byte) error {
	if p.sealed {
		return NewIOError(fmt.Sprintf("cannot add %s: payload is sealed by the manifest", name))
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return NewIOError(fmt.Sprintf("invalid payload file name %q", name))
	}
	if name == ManifestFile || name == SignatureFile {
		return NewIOError(fmt.Sprintf("%s is reserved", name))
	}
	if _, exists := p.index[name]; exists {
		return NewIOError(fmt.Sprintf("duplicate payload file %s", name))
	}
	if len(data) == 0 {
		return NewIOError(fmt.Sprintf("payload file %s is empty", name))
	}

	p.index[name] = len(p.files)
	p.files = append(p.files, File{Name: name, Data: data})
	return nil
}

// Files returns the payload files in insertion order.
func (p *Payload) Files() []File {
	return append([]File(nil), p.files...)
}

func (p *Payload) seal() { p.sealed = true }

// BuildPayload produces pass.json, the icons and the QR strip for validated input.
func BuildPayload(cfg Config, in Input, generatedAt time.Time) (*Payload, Descriptor, error) {
	descriptor := NewDescriptor(cfg, in, generatedAt)

	passJSON, err := descriptor.Marshal()
	if err != nil {
		return nil, Descriptor{}, err
	}

	strip, err := EncodeQR(in.PublicCardURL)
	if err != nil {
		return nil, Descriptor{}, err
	}

	payload := NewPayload()
	if err := payload.Add(PassFile, passJSON); err != nil {
		return nil, Descriptor{}, err
	}
	for _, name := range iconFiles {
		icon, err := readIcon(name)
		if err != nil {
			return nil, Descriptor{}, err
		}
		if err := payload.Add(name, icon); err != nil {
			return nil, Descriptor{}, err
		}
	}
	if err := payload.Add(StripFile, strip); err != nil {
		return nil, Descriptor{}, err
	}

	return payload, descriptor, nil
}
