// Package source reads document bytes from their storage location. Local
// paths are read from disk; "gs://" URIs are fetched from Google Cloud
// Storage, so statements uploaded to a bucket can be ingested directly.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// Fetch reads the full content of a document by path or URI. An unreadable
// document is a fatal error for that document; the caller reports it.
func Fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "gs://") {
		return fetchFromGCS(ctx, uri)
	}
	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading %q: %w", uri, err)
	}
	return data, nil
}

// Filename extracts the base filename from a path or "gs://" URI.
func Filename(uri string) string {
	if strings.HasPrefix(uri, "gs://") {
		trimmed := strings.TrimPrefix(uri, "gs://")
		parts := strings.SplitN(trimmed, "/", 2)
		if len(parts) < 2 {
			return trimmed
		}
		return path.Base(parts[1])
	}
	return path.Base(uri)
}

// fetchFromGCS downloads object bytes for a "gs://bucket/object" URI.
// Assumes Application Default Credentials are configured.
func fetchFromGCS(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := splitGCSURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: creating storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: opening object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading object: %w", err)
	}
	return data, nil
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("splitGCSURI: malformed GCS URI %q", uri)
	}
	return parts[0], parts[1], nil
}
