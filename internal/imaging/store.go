package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"friendmarket/internal/config"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir       = "./media"
	DefaultMediaURL        = "/media"
	DefaultJPEGQuality     = 80
	DefaultMaxUploadSizeMB = 10
	WebPQuality            = 70
	// DefaultMaxPixels bounds decoded size independently of the byte cap.
	DefaultMaxPixels = 40_000_000
)

// Store validates, resizes and writes uploads below a media root.
type Store struct {
	dir          string
	mediaURL     string
	quality      int
	maxBytes     int64
	maxPixels    int
	writeWebPDup bool
}

// NewStore builds a Store from config, falling back to defaults for unset values.
func NewStore(cfg *config.Config) *Store {
	s := &Store{
		dir:       DefaultUploadDir,
		mediaURL:  DefaultMediaURL,
		quality:   DefaultJPEGQuality,
		maxBytes:  DefaultMaxUploadSizeMB * 1024 * 1024,
		maxPixels: DefaultMaxPixels,
	}
	if cfg == nil {
		return s
	}
	if cfg.UploadDir != "" {
		s.dir = cfg.UploadDir
	}
	if cfg.MediaURL != "" {
		s.mediaURL = strings.TrimRight(cfg.MediaURL, "/")
	}
	if cfg.ImageJPEGQuality > 0 {
		s.quality = cfg.ImageJPEGQuality
	}
	if cfg.ImageMaxUploadSizeMB > 0 {
		s.maxBytes = int64(cfg.ImageMaxUploadSizeMB) * 1024 * 1024
	}
	s.writeWebPDup = cfg.ImageWriteWebP
	return s
}

// MaxBytes is the upload size cap.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Dir is the media root on disk.
func (s *Store) Dir() string { return s.dir }

// URL maps a stored relative path to its public URL. Empty stays empty.
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.mediaURL + "/" + strings.TrimLeft(filepath.ToSlash(rel), "/")
}

// Decode sniffs and decodes an upload. Only JPEG, PNG, GIF and WebP pass.
// A declared image content type must agree with the sniffed one.
func (s *Store) Decode(content []byte, declaredType string) (image.Image, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, models.NewValidationError("Invalid image type")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > s.maxPixels/cfg.Height {
		return nil, models.NewValidationError(fmt.Sprintf("Image dimensions too large (max %d megapixels)", s.maxPixels/1_000_000))
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	sourceType := decodedFormatToMime(format)
	if sourceType == "" {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(declaredType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceType) {
		return nil, models.NewValidationError("Image content type mismatch")
	}
	return decoded, nil
}

// Save decodes content, resizes it to fit the given Spec and writes
// <dir>/<kind>/<uuid>.jpg. It returns the path relative to the media root.
func (s *Store) Save(ctx context.Context, content []byte, contentType string, spec Spec) (rel string, err error) {
	defer func() {
		observability.ImagesProcessed.WithLabelValues(spec.Kind, observability.Result(err)).Inc()
	}()

	src, err := s.Decode(content, contentType)
	if err != nil {
		return "", err
	}
	out := Resize(src, spec)

	encoded, err := encodeJPEG(out, s.quality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString()
	rel = filepath.ToSlash(filepath.Join(spec.Kind, name+".jpg"))
	abs := filepath.Join(s.dir, rel)
	if err := writeBytesToFile(abs, encoded); err != nil {
		return "", models.NewInternalError(err)
	}

	if s.writeWebPDup {
		if encodedWebP, werr := encodeWebP(out, WebPQuality); werr == nil {
			if werr = writeBytesToFile(filepath.Join(s.dir, spec.Kind, name+".webp"), encodedWebP); werr != nil {
				middleware.Logger.WarnContext(ctx, "webp companion write failed", slog.String("error", werr.Error()))
			}
		} else {
			middleware.Logger.WarnContext(ctx, "webp companion encode failed", slog.String("error", werr.Error()))
		}
	}

	b := out.Bounds()
	middleware.Logger.DebugContext(ctx, "image stored",
		slog.String("kind", spec.Kind), slog.String("path", rel),
		slog.Int("width", b.Dx()), slog.Int("height", b.Dy()))
	return rel, nil
}

// Remove deletes a previously stored image and its WebP companion.
// Missing files and the default profile photo are ignored.
func (s *Store) Remove(rel string) {
	if rel == "" || rel == models.DefaultProfilePhoto || strings.Contains(rel, "..") {
		return
	}
	abs := filepath.Join(s.dir, filepath.FromSlash(rel))
	_ = os.Remove(abs)
	_ = os.Remove(strings.TrimSuffix(abs, filepath.Ext(abs)) + ".webp")
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
