package catalog

import (
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

// Image is an uploaded file before it reaches object storage.
type Image struct {
	Filename string
	Data     []byte
}

var allowedImageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

var allowedImageDescription = describeAllowed()

func describeAllowed() string {
	list := make([]string, 0, len(allowedImageTypes))
	for mime := range allowedImageTypes {
		list = append(list, mime)
	}
	sort.Strings(list)
	return strings.Join(list, ", ")
}

// sniffImage detects the content type from the bytes, ignoring any client-supplied
// header or extension.
func sniffImage(data []byte, maxBytes int64) (contentType, extension string, err error) {
	if len(data) == 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "image is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d MB", maxBytes>>20)).
			WithDetails(map[string]any{"max_bytes": maxBytes, "size": len(data)})
	}
	detected := mimetype.Detect(data)
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(detected.String(), ";", 2)[0]))
	ext, ok := allowedImageTypes[base]
	if !ok {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
			WithDetails(map[string]any{"detected": base, "allowed": allowedImageDescription})
	}
	return base, ext, nil
}
