package scan

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

const defaultMediaType = "image/jpeg"

var dataURIPrefix = regexp.MustCompile(`^data:(image/[A-Za-z0-9.+-]+);base64,`)

// Image is a label photo as sent by the client.
type Image struct {
	MediaType string
	// Data is the base64 payload without the data-URI prefix.
	Data  string
	Bytes []byte
}

// ParseImage strips an optional data-URI prefix and checks the payload is
// base64. The media type comes from the prefix, image/jpeg without one.
func ParseImage(s string) (Image, error) {
	img := Image{MediaType: defaultMediaType, Data: strings.TrimSpace(s)}
	if m := dataURIPrefix.FindStringSubmatch(img.Data); m != nil {
		img.MediaType = strings.ToLower(m[1])
		img.Data = img.Data[len(m[0]):]
	}
	if img.MediaType == "image/jpg" {
		img.MediaType = defaultMediaType
	}
	if img.Data == "" {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	b, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		if b, err = base64.RawStdEncoding.DecodeString(img.Data); err != nil {
			return Image{}, fmt.Errorf("%w: not base64", ErrInvalidImage)
		}
	}
	img.Bytes = b
	return img, nil
}

// Extension is the file extension matching the media type.
func (i Image) Extension() string {
	sub := strings.TrimPrefix(i.MediaType, "image/")
	if sub == "jpeg" {
		return "jpg"
	}
	return sub
}
