package media

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	pkgerrors "github.com/bankdki/stock-api/pkg/errors"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// Magic numbers for the two accepted formats.
var (
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

const sniffLen = 16

// ValidateImageUpload checks an uploaded file's declared content type and,
// when sniffContent is set, its leading bytes against the JPEG/PNG magic
// numbers. Nothing is persisted before this passes.
func ValidateImageUpload(header *multipart.FileHeader, sniffContent bool) error {
	declared, err := parseMimeType(header.Header.Get("Content-Type"))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnsupportedMedia, err, "only JPG and PNG images are allowed")
	}
	if _, ok := allowedImageTypes[declared]; !ok {
		return pkgerrors.New(pkgerrors.CodeUnsupportedMedia, "only JPG and PNG images are allowed").
			WithDetails(map[string]any{"contentType": declared})
	}

	if !sniffContent {
		return nil
	}

	file, err := header.Open()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open upload")
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload")
	}
	head = head[:n]

	if !hasImageSignature(head) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid image file: file content does not match declared type")
	}
	return nil
}

func hasImageSignature(head []byte) bool {
	if len(head) > len(jpegSignature) && bytes.HasPrefix(head, jpegSignature) {
		return true
	}
	return len(head) > len(pngSignature) && bytes.HasPrefix(head, pngSignature)
}

func parseMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("content type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("content type invalid: %w", err)
	}
	return strings.ToLower(mediaType), nil
}
