package storage

import "context"

// Kind identifies the active backend variant.
type Kind string

const (
	KindLocal Kind = "local"
	KindS3    Kind = "s3"
)

// Delimiter separates stored media references within a Post's media field.
// Individual references must never contain it.
const Delimiter = ","

// Backend abstracts "put bytes, get retrievable reference" over the local
// filesystem and object storage. Put returns the reference persisted on the
// post (a servable path for local storage, a bare object key for S3); URL
// turns a stored reference back into something a client can fetch.
type Backend interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	URL(ctx context.Context, ref string) (string, error)
	Kind() Kind
}
