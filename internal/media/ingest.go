package media

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/groupo-app/backend/internal/apperrors"
	"github.com/groupo-app/backend/internal/metrics"
	"github.com/groupo-app/backend/internal/storage"
)

// allowedExtensions is the set of file extensions accepted for post media.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"mp4": true, "webm": true, "ogg": true, "mov": true,
	"m4v": true, "hevc": true, "heic": true, "heif": true,
}

// mimeExtensions maps declared MIME types to extensions for base64 payloads
// that arrive without a usable filename.
var mimeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/heic":      "heic",
	"image/heif":      "heif",
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/ogg":       "ogg",
	"video/quicktime": "mov",
	"video/hevc":      "hevc",
	"video/x-m4v":     "m4v",
}

const defaultExtension = "jpg"

// Upload is one multipart file normalized to bytes.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Base64Item is one base64-encoded payload item. Data may carry a
// data:<mime>;base64, prefix.
type Base64Item struct {
	Data        string
	Filename    string
	ContentType string
}

// Ingestor normalizes uploads into stored media references. When the active
// backend is object storage and an upload fails, the item is retried against
// the local fallback so the post still goes through with a local reference.
type Ingestor struct {
	backend  storage.Backend
	fallback storage.Backend
	maxFiles int
	log      *zap.Logger
}

// NewIngestor creates an Ingestor. fallback may be nil when the active
// backend is already local.
func NewIngestor(backend, fallback storage.Backend, maxFiles int, log *zap.Logger) *Ingestor {
	return &Ingestor{backend: backend, fallback: fallback, maxFiles: maxFiles, log: log}
}

// MaxFiles returns the per-post media limit.
func (in *Ingestor) MaxFiles() int { return in.maxFiles }

// SaveUploads stores multipart files and returns their references. Files
// with a disallowed extension are skipped, not fatal. The count limit is
// checked before any upload is attempted.
func (in *Ingestor) SaveUploads(ctx context.Context, files []Upload, existing int) ([]string, error) {
	if err := in.checkLimit(existing, len(files)); err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(files))
	for _, f := range files {
		name := sanitizeFilename(f.Filename)
		ext := extensionFor(name, f.ContentType)
		if !allowedExtensions[ext] {
			in.log.Info("skipping file with disallowed extension", zap.String("filename", f.Filename))
			continue
		}
		ref, err := in.put(ctx, storageName(name, ext), f.Data, f.ContentType)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// SaveBase64 stores base64 payload items. Items that fail decoding or carry
// a disallowed extension are skipped without aborting siblings; a batch that
// yields zero references is an error.
func (in *Ingestor) SaveBase64(ctx context.Context, items []Base64Item, existing int) ([]string, error) {
	if err := in.checkLimit(existing, len(items)); err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		data, contentType, err := decodePayload(item.Data)
		if err != nil {
			in.log.Warn("skipping undecodable base64 item", zap.String("filename", item.Filename), zap.Error(err))
			continue
		}
		if item.ContentType != "" {
			contentType = item.ContentType
		}

		name := sanitizeFilename(item.Filename)
		ext := extensionFor(name, contentType)
		if !allowedExtensions[ext] {
			in.log.Info("skipping item with disallowed extension", zap.String("filename", item.Filename))
			continue
		}
		ref, err := in.put(ctx, storageName(name, ext), data, contentType)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if len(refs) == 0 {
		return nil, apperrors.ErrNoValidFiles
	}
	return refs, nil
}

func (in *Ingestor) checkLimit(existing, incoming int) error {
	if existing+incoming > in.maxFiles {
		return apperrors.ErrTooManyFiles
	}
	return nil
}

// put stores one item, falling back to local storage when the object-storage
// upload fails. Best-effort availability over consistency: a mixed post may
// end up holding both kinds of reference.
func (in *Ingestor) put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ref, err := in.backend.Put(ctx, name, data, contentType)
	if err != nil && in.fallback != nil {
		in.log.Warn("object storage upload failed, falling back to local storage",
			zap.String("name", name), zap.Error(err))
		metrics.StorageFallbacks.Inc()
		ref, err = in.fallback.Put(ctx, name, data, contentType)
	}
	if err != nil {
		return "", err
	}
	metrics.MediaUploads.Inc()
	return ref, nil
}

// decodePayload strips an optional data-URL prefix and decodes the base64
// body. The MIME type from the prefix, if any, is returned alongside.
func decodePayload(payload string) ([]byte, string, error) {
	contentType := ""
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, "", apperrors.ErrDecode
		}
		meta := payload[len("data:"):idx]
		if semi := strings.Index(meta, ";"); semi >= 0 {
			meta = meta[:semi]
		}
		contentType = meta
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", apperrors.ErrDecode
	}
	return data, contentType, nil
}

// extensionFor resolves the stored extension: the sanitized filename wins,
// then the declared MIME type, then the default.
func extensionFor(sanitized, contentType string) string {
	if ext := strings.TrimPrefix(filepath.Ext(sanitized), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if ext, ok := mimeExtensions[strings.ToLower(contentType)]; ok {
		return ext
	}
	return defaultExtension
}

// storageName assigns a globally-unique storage name: a random identifier
// prefixed to the sanitized original name, guarding against collisions and
// path traversal.
func storageName(sanitized, ext string) string {
	stem := strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
	if stem == "" {
		stem = "media"
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id + "_" + stem + "." + ext
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// sanitizeFilename strips path components and collapses anything unsafe,
// in the spirit of werkzeug's secure_filename.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}
