package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUploadKeyNamespaces(t *testing.T) {
	pub := NewUploadKey("image/png", true)
	assert.True(t, strings.HasPrefix(pub, PublicPrefix))
	assert.True(t, IsPublic(pub))

	priv := NewUploadKey("model/gltf-binary", false)
	assert.True(t, strings.HasPrefix(priv, ProductPrefix))
	assert.False(t, IsPublic(priv))
	assert.True(t, strings.HasSuffix(priv, ".glb"))
}

func TestNewUploadKeyUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		k := NewUploadKey("application/zip", false)
		require.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestExtensionForUnknownType(t *testing.T) {
	k := NewUploadKey("application/x-kalakriti-unknown", false)
	base := strings.TrimPrefix(k, ProductPrefix)
	assert.NotContains(t, base, ".")
}
