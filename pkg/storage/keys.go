package storage

import (
	"mime"
	"strings"

	"github.com/google/uuid"
)

// Object keys live in two namespaces. Anything under public/ may be served
// unsigned (previews, thumbnails); everything else requires a presigned URL.
const (
	PublicPrefix  = "public/"
	ProductPrefix = "products/"
)

// IsPublic reports whether key lives in the unsigned namespace.
func IsPublic(key string) bool {
	return strings.HasPrefix(key, PublicPrefix)
}

// NewUploadKey mints a collision-free object key for an upload with the
// given content type. Public uploads land under public/, everything else
// under products/.
func NewUploadKey(contentType string, public bool) string {
	prefix := ProductPrefix
	if public {
		prefix = PublicPrefix
	}
	return prefix + uuid.NewString() + extensionFor(contentType)
}

// extensionFor picks a file extension from the content type. Unknown types
// get no extension; the object is still addressable by its key.
func extensionFor(contentType string) string {
	switch contentType {
	case "model/gltf-binary":
		return ".glb"
	case "model/gltf+json":
		return ".gltf"
	case "application/zip":
		return ".zip"
	case "image/jpeg":
		return ".jpg"
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
