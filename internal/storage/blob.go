package storage

import "io"

// BlobStore holds module supplementary resources (cheat sheets, starter
// files) addressed by catalog resource keys.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}
