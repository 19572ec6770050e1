package imageref

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEGIF  = "image/gif"
	MIMEWEBP = "image/webp"
	MIMEPNG  = "image/png"
)

// base64 strings carry no sniffable signature, so only a prefix is checked
const base64ProbeLength = 50

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// RefKind describes how a ResourceRef should be consumed
type RefKind string

const (
	RefNone    RefKind = ""
	RefURL     RefKind = "url"
	RefDataURL RefKind = "data"
	RefBlob    RefKind = "blob"
	RefOpaque  RefKind = "opaque"
)

// ResourceRef is a renderable reference to an image.
// Blob references carry their bytes and a handle that is unique per resolution.
type ResourceRef struct {
	Kind     RefKind `json:"kind,omitempty"`
	URL      string  `json:"url,omitempty"`
	MIMEType string  `json:"mimeType,omitempty"`
	Handle   string  `json:"handle,omitempty"`
	Data     []byte  `json:"-"`
}

// IsEmpty reports whether the reference points at nothing
func (ref ResourceRef) IsEmpty() bool {
	return ref.Kind == RefNone
}

// DataURL renders a blob reference inline as a base64 data URL.
// Non-blob references return their URL unchanged.
func (ref ResourceRef) DataURL() string {
	if ref.Kind != RefBlob {
		return ref.URL
	}
	return "data:" + ref.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(ref.Data)
}

// signature is a magic number expected at a fixed offset
type signature struct {
	offset int
	magic  []byte
}

type format struct {
	mimeType   string
	signatures []signature
}

// Checked in order, first match wins
var formats = []format{
	{mimeType: MIMEJPEG, signatures: []signature{{0, []byte{0xFF, 0xD8}}}},
	{mimeType: MIMEGIF, signatures: []signature{{0, []byte{0x47, 0x49, 0x46}}}},
	{mimeType: MIMEWEBP, signatures: []signature{
		{0, []byte{0x52, 0x49, 0x46, 0x46}},
		{8, []byte{0x57, 0x45, 0x42, 0x50}},
	}},
	{mimeType: MIMEPNG, signatures: []signature{{0, []byte{0x89, 0x50, 0x4E, 0x47}}}},
}

// Resolve turns a payload into a renderable reference. It never fails:
// absent payloads map to an empty reference and unknown binary formats are
// tagged as PNG.
func Resolve(payload Payload) ResourceRef {
	switch payload.kind {
	case PayloadText:
		return resolveText(payload.text)
	case PayloadBinary:
		return resolveBinary(payload.bytes)
	default:
		return ResourceRef{}
	}
}

func resolveText(value string) ResourceRef {
	if strings.HasPrefix(value, "data:image") {
		return ResourceRef{Kind: RefDataURL, URL: value}
	}
	if strings.HasPrefix(value, "http") {
		return ResourceRef{Kind: RefURL, URL: value}
	}

	probe := value
	if len(probe) > base64ProbeLength {
		probe = probe[:base64ProbeLength]
	}
	if base64Pattern.MatchString(probe) {
		return ResourceRef{
			Kind:     RefDataURL,
			URL:      "data:" + MIMEPNG + ";base64," + value,
			MIMEType: MIMEPNG,
		}
	}

	return ResourceRef{Kind: RefOpaque, URL: value}
}

func resolveBinary(data []byte) ResourceRef {
	handle := uuid.NewString()
	copied := make([]byte, len(data))
	copy(copied, data)

	return ResourceRef{
		Kind:     RefBlob,
		URL:      "blob:" + handle,
		MIMEType: SniffMIME(data),
		Handle:   handle,
		Data:     copied,
	}
}

// SniffMIME inspects the leading bytes for a known image signature and
// defaults to PNG when none matches.
func SniffMIME(data []byte) string {
	for _, candidate := range formats {
		if matchesAll(data, candidate.signatures) {
			return candidate.mimeType
		}
	}
	return MIMEPNG
}

func matchesAll(data []byte, signatures []signature) bool {
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if end > len(data) {
			return false
		}
		for index, expected := range sig.magic {
			if data[sig.offset+index] != expected {
				return false
			}
		}
	}
	return true
}
