package storage

import (
	"net/url"
	"strings"
)

// ExtractKey maps a previously persisted presigned URL back to its object
// key so expired URLs can be backfilled into presignable keys. It recognizes
// virtual-hosted addressing (bucket.s3.<region>.amazonaws.com/key) and
// path-style addressing (s3.<region>.amazonaws.com/bucket/key). Returns
// false for anything that does not look like an object in the bucket.
func ExtractKey(rawURL, bucket string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := u.Host
	path := strings.TrimPrefix(u.Path, "/")
	if host == "" || path == "" || bucket == "" {
		return "", false
	}

	if strings.HasPrefix(host, bucket+".") {
		return unescape(path), true
	}

	if strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-") {
		if strings.HasPrefix(path, bucket+"/") {
			return unescape(path[len(bucket)+1:]), true
		}
	}

	return "", false
}

// NormalizeRefs rewrites presigned URLs inside a stored media field into
// bare object keys, leaving everything else untouched. Returns the updated
// field and the number of converted references.
func NormalizeRefs(media, bucket string) (string, int) {
	refs := SplitRefs(media)
	if len(refs) == 0 {
		return media, 0
	}
	changed := 0
	updated := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			if key, ok := ExtractKey(ref, bucket); ok {
				updated = append(updated, key)
				changed++
				continue
			}
		}
		updated = append(updated, ref)
	}
	return JoinRefs(updated), changed
}

func unescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}
