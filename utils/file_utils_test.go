package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveImageResizesAndThumbnails(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)

	saved, err := store.SaveImage(pngBytes(t, 2400, 600), "../../etc/Photo.PNG", "products")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.URL, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(saved.URL, ".png"))
	assert.True(t, strings.HasPrefix(saved.ThumbnailURL, "/uploads/products/thumbnails/"))

	full, err := imaging.Open(filepath.Join(dir, strings.TrimPrefix(saved.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, MaxImageWidth, full.Bounds().Dx())
	assert.Equal(t, 300, full.Bounds().Dy())

	thumb, err := imaging.Open(filepath.Join(dir, strings.TrimPrefix(saved.ThumbnailURL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailWidth, thumb.Bounds().Dx())

	require.NoError(t, store.Remove(saved.URL))
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(saved.URL, "/uploads/")))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(saved.ThumbnailURL, "/uploads/")))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImageKeepsSmallImages(t *testing.T) {
	store := NewImageStore(t.TempDir())
	saved, err := store.SaveImage(pngBytes(t, 300, 200), "small.png", "brands")
	require.NoError(t, err)

	full, err := imaging.Open(filepath.Join(store.Dir(), strings.TrimPrefix(saved.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, 300, full.Bounds().Dx())
}

func TestSaveImageRejects(t *testing.T) {
	store := NewImageStore(t.TempDir())

	_, err := store.SaveImage([]byte("<svg/>"), "logo.svg", "brands")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = store.SaveImage([]byte("not an image"), "fake.jpg", "brands")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	assert.NoError(t, store.Remove("https://cdn.example/elsewhere.jpg"))
	assert.NoError(t, store.Remove("/uploads/../secret.txt"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeInput("  hello\x00 world\t "))

	phone, err := SanitizePhone(" +961 (3) 123-456 ")
	require.NoError(t, err)
	assert.Equal(t, "+9613123456", phone)
	_, err = SanitizePhone("12")
	assert.Error(t, err)
	_, err = SanitizePhone("12+345678")
	assert.Error(t, err)

	assert.Equal(t, map[string]string{"color": "Red"}, SanitizeMap(map[string]string{" color ": " Red ", "size": "  "}))
}
