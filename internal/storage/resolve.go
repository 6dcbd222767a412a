package storage

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Resolver turns a post's stored media field back into client-usable URLs.
// It inspects each reference's shape rather than trusting a global flag: a
// mixed deployment can hold local paths, already-presigned URLs and bare
// object keys in the same post.
type Resolver struct {
	backend Backend
	log     *zap.Logger
}

// NewResolver creates a Resolver over the active backend.
func NewResolver(backend Backend, log *zap.Logger) *Resolver {
	return &Resolver{backend: backend, log: log}
}

// Resolve splits the delimited media field and resolves every reference.
// References that are already URLs or local paths pass through unchanged;
// anything else is treated as an object-storage key and presigned. On any
// presigning failure the raw stored references are returned unresolved —
// resolution degrades, it never fails the caller.
func (r *Resolver) Resolve(ctx context.Context, media string) []string {
	refs := SplitRefs(media)
	if len(refs) == 0 || r.backend.Kind() == KindLocal {
		return refs
	}

	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		if isDisplayable(ref) {
			resolved = append(resolved, ref)
			continue
		}
		url, err := r.backend.URL(ctx, ref)
		if err != nil {
			r.log.Warn("presigning failed, returning raw media references",
				zap.String("ref", ref), zap.Error(err))
			return refs
		}
		resolved = append(resolved, url)
	}
	return resolved
}

// isDisplayable reports whether a stored reference is already a URL a client
// can use without presigning.
func isDisplayable(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "/")
}

// SplitRefs splits a stored media field into individual references.
// An empty field means no media.
func SplitRefs(media string) []string {
	if media == "" {
		return nil
	}
	parts := strings.Split(media, Delimiter)
	refs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			refs = append(refs, p)
		}
	}
	return refs
}

// JoinRefs joins references into the persisted delimited form.
func JoinRefs(refs []string) string {
	return strings.Join(refs, Delimiter)
}
