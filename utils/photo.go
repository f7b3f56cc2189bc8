package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxPhotoSize is 10MB of decoded image data
	MaxPhotoSize = 10 * 1024 * 1024
)

// AllowedPhotoTypes maps accepted content types to file extensions
var AllowedPhotoTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
}

// sniffedPhotoTypes are the formats recognised from the decoded bytes
var sniffedPhotoTypes = []string{"image/png", "image/jpeg", "image/webp"}

// PhotoError represents a photo validation error
type PhotoError struct {
	Code    string
	Message string
}

func (e *PhotoError) Error() string {
	return e.Message
}

// DecodedPhoto is a validated photo ready for storage
type DecodedPhoto struct {
	ContentType string
	Extension   string
	Data        []byte
}

// ValidatePhotoData checks that encoded is a usable image, either a
// "data:image/...;base64," URL or bare base64
func ValidatePhotoData(encoded string) error {
	_, err := DecodePhotoData(encoded)
	return err
}

// DecodePhotoData validates and decodes an encoded photo
func DecodePhotoData(encoded string) (*DecodedPhoto, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, &PhotoError{Code: "PHOTO_REQUIRED", Message: "Photo is required"}
	}

	declared := ""
	payload := encoded
	if strings.HasPrefix(encoded, "data:") {
		header, body, found := strings.Cut(encoded, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, &PhotoError{Code: "INVALID_PHOTO", Message: "Photo must be a base64 data URL"}
		}
		declared = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
		if _, ok := AllowedPhotoTypes[declared]; !ok {
			return nil, &PhotoError{
				Code:    "INVALID_PHOTO_FORMAT",
				Message: fmt.Sprintf("Unsupported photo type %q", declared),
			}
		}
		payload = body
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxPhotoSize+2 {
		return nil, &PhotoError{
			Code:    "PHOTO_TOO_LARGE",
			Message: fmt.Sprintf("Photo exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &PhotoError{Code: "INVALID_PHOTO", Message: "Photo is not valid base64"}
	}
	if len(data) == 0 {
		return nil, &PhotoError{Code: "PHOTO_REQUIRED", Message: "Photo is required"}
	}
	if len(data) > MaxPhotoSize {
		return nil, &PhotoError{
			Code:    "PHOTO_TOO_LARGE",
			Message: fmt.Sprintf("Photo exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	contentType := sniffPhotoType(data)
	if contentType == "" {
		return nil, &PhotoError{Code: "INVALID_PHOTO_FORMAT", Message: "Photo must be a PNG, JPEG or WebP image"}
	}
	if declared != "" && AllowedPhotoTypes[declared] != AllowedPhotoTypes[contentType] {
		return nil, &PhotoError{
			Code:    "INVALID_PHOTO_FORMAT",
			Message: fmt.Sprintf("Photo is declared as %s but contains %s", declared, contentType),
		}
	}

	return &DecodedPhoto{ContentType: contentType, Extension: AllowedPhotoTypes[contentType], Data: data}, nil
}

// sniffPhotoType returns the image type detected from data, or "" when it is
// not an accepted format
func sniffPhotoType(data []byte) string {
	detected := mimetype.Detect(data)
	for _, t := range sniffedPhotoTypes {
		if detected.Is(t) {
			return t
		}
	}
	return ""
}
