package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Maximum upload size (10MB)
	MaxUploadSize = 10 * 1024 * 1024
	// Product and brand images are scaled down to this width
	MaxImageWidth  = 1200
	ThumbnailWidth = 400

	uploadURLPrefix = "/uploads"
	thumbnailsDir   = "thumbnails"
)

var ErrUnsupportedImage = errors.New("unsupported image format. Allowed formats: jpg, jpeg, png, gif, webp")

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidateImageName checks the extension of an uploaded image.
func ValidateImageName(filename string) error {
	if !allowedImageExts[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedImage
	}
	return nil
}

// SavedImage is the public location of a stored image and its thumbnail.
type SavedImage struct {
	URL          string
	ThumbnailURL string
}

// ImageStore writes uploaded images below a directory served at /uploads.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Dir is the root directory files are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// InitializeStorage creates the upload directories.
func (s *ImageStore) InitializeStorage(subDirs ...string) error {
	for _, sub := range subDirs {
		for _, dir := range []string{filepath.Join(s.dir, sub), filepath.Join(s.dir, sub, thumbnailsDir)} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// SaveImage decodes data, scales it to at most MaxImageWidth wide and
// writes it with a ThumbnailWidth thumbnail under subDir. Files get random
// names; only the extension of filename is kept.
func (s *ImageStore) SaveImage(data []byte, filename, subDir string) (SavedImage, error) {
	if len(data) > MaxUploadSize {
		return SavedImage{}, fmt.Errorf("file too large. Maximum size is %d bytes", MaxUploadSize)
	}
	if err := ValidateImageName(filename); err != nil {
		return SavedImage{}, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return SavedImage{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".webp" {
		// no webp encoder, store as jpeg
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	subDir = strings.Trim(subDir, "/")
	if err := s.InitializeStorage(subDir); err != nil {
		return SavedImage{}, err
	}

	if err := s.write(fit(img, MaxImageWidth), filepath.Join(s.dir, subDir, name)); err != nil {
		return SavedImage{}, err
	}
	if err := s.write(fit(img, ThumbnailWidth), filepath.Join(s.dir, subDir, thumbnailsDir, name)); err != nil {
		return SavedImage{}, err
	}

	return SavedImage{
		URL:          path.Join(uploadURLPrefix, subDir, name),
		ThumbnailURL: path.Join(uploadURLPrefix, subDir, thumbnailsDir, name),
	}, nil
}

// SaveMultipart reads an uploaded form file and stores it with SaveImage.
func (s *ImageStore) SaveMultipart(fh *multipart.FileHeader, subDir string) (SavedImage, error) {
	if fh.Size > MaxUploadSize {
		return SavedImage{}, fmt.Errorf("file too large. Maximum size is %d bytes", MaxUploadSize)
	}
	f, err := fh.Open()
	if err != nil {
		return SavedImage{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return SavedImage{}, err
	}
	return s.SaveImage(data, fh.Filename, subDir)
}

// Remove deletes a stored image and its thumbnail. URLs outside /uploads
// are ignored.
func (s *ImageStore) Remove(url string) error {
	clean := path.Clean(url)
	rel := strings.TrimPrefix(clean, uploadURLPrefix+"/")
	if rel == clean {
		return nil
	}
	dir, name := path.Split(rel)
	for _, p := range []string{filepath.Join(s.dir, rel), filepath.Join(s.dir, dir, thumbnailsDir, name)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func fit(img image.Image, width int) image.Image {
	if img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

func (s *ImageStore) write(img image.Image, fullPath string) error {
	format, err := imaging.FormatFromFilename(fullPath)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(85)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
