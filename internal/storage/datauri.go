package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

var ErrInvalidDataURI = errors.New("invalid image data URI")

var dataURIPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+/-]+);base64,(.+)$`)

// DecodeDataURI splits "data:<media>;base64,<payload>" into its media type and decoded bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	m := dataURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", nil, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidDataURI
	}
	return m[1], data, nil
}
