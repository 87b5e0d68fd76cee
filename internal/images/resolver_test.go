package images

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://api.local:3000"

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kunfu.jpg", Normalize("  /images/kunfu.jpg "))
	assert.Equal(t, "kunfu.jpg", Normalize("IMAGENES//kunfu.jpg"))
	assert.Equal(t, "kunfu.jpg", Normalize("images/imagenes/kunfu.jpg"))
	assert.Equal(t, "fotos/kunfu.jpg", Normalize("fotos/kunfu.jpg"))
	assert.Equal(t, "", Normalize("   "))
}

func TestResolveKnownName(t *testing.T) {
	r := NewResolver(base, false, zerolog.Nop())
	src, ok := r.Resolve("imagenes/kunfu.jpg", DefaultFallbackLocal, DefaultFallbackRemote)
	require.True(t, ok)
	require.True(t, src.IsLocal())
	assert.Equal(t, "kunfu.jpg", src.Asset.Name)
	assert.Equal(t, "assets/images/kunfu.jpg", src.String())
}

func TestResolveUnknownUsesLocalFallback(t *testing.T) {
	r := NewResolver(base, false, zerolog.Nop())
	src, ok := r.Resolve("uploads/unknown.png", "fondo3.webp", DefaultFallbackRemote)
	require.True(t, ok)
	require.True(t, src.IsLocal())
	assert.Equal(t, "fondo3.webp", src.Asset.Name)

	src, ok = r.ResolveActivity("")
	require.True(t, ok)
	assert.Equal(t, DefaultFallbackLocal, src.Asset.Name)
}

func TestResolveUnknownFallsBackToRemote(t *testing.T) {
	r := NewResolver(base, false, zerolog.Nop())

	src, ok := r.Resolve("unknown.png", "missing.png", DefaultFallbackRemote)
	require.True(t, ok)
	assert.False(t, src.IsLocal())
	assert.Equal(t, base+"/imagenes/fondo2.jpg", src.URI)

	src, ok = r.Resolve("unknown.png", "", "https://cdn.example.com/x.jpg")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/x.jpg", src.URI)
}

func TestResolvePathWhenRemoteFallbackBlank(t *testing.T) {
	r := NewResolver(base, false, zerolog.Nop())
	src, ok := r.Resolve("/uploads/unknown.png", "", "")
	require.True(t, ok)
	assert.Equal(t, base+"/uploads/unknown.png", src.URI)
}

func TestResolveNothingUsable(t *testing.T) {
	r := NewResolver(base, false, zerolog.Nop())
	_, ok := r.Resolve("", "", "")
	assert.False(t, ok)
}

func TestResolveLogsOnceWhenDebugging(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(base, true, zerolog.New(&buf))

	r.Resolve("images1.jfif", "", "")
	r.Resolve("mystery.jfif", "", DefaultFallbackRemote)
	r.Resolve("mystery.jfif", "", DefaultFallbackRemote)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "local image found"))
	assert.Equal(t, 1, strings.Count(out, "image name not in bundle"))
	assert.Equal(t, 1, strings.Count(out, "jfif extension detected"))
	assert.Equal(t, 1, strings.Count(out, "using remote image"))
	assert.Contains(t, out, `"level":"warn"`)
}

func TestResolveSilentWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(base, false, zerolog.New(&buf))
	r.Resolve("mystery.png", "", "")
	assert.Empty(t, buf.String())
}

func TestLookup(t *testing.T) {
	a, ok := Lookup("persona1.jpg")
	require.True(t, ok)
	assert.Equal(t, "assets/images/persona1.jpg", a.Path)
	_, ok = Lookup("nope.jpg")
	assert.False(t, ok)
}

func TestSetActivityFallbacks(t *testing.T) {
	r := NewResolver(base, false, zerolog.Nop())
	r.SetActivityFallbacks("fondo4.webp", "")
	src, ok := r.ResolveActivity("missing.png")
	require.True(t, ok)
	assert.Equal(t, "fondo4.webp", src.Asset.Name)

	r.SetActivityFallbacks("not-bundled.png", "uploads/default.png")
	src, ok = r.ResolveActivity("missing.png")
	require.True(t, ok)
	assert.Equal(t, base+"/uploads/default.png", src.URI)
}
