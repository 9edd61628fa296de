// Package gcs wraps the object-store bucket that holds every pipeline
// artifact: source videos, intermediate JSON, and the final prompt files.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"storyboard-pipeline/types"
)

// Store is a thin client for one bucket
type Store struct {
	client *storage.Client
	bucket string
}

// New creates a Store for the given bucket using application-default credentials
func New(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

// UploadString writes data to an object with the given content type
func (s *Store) UploadString(ctx context.Context, object, data, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.WriteString(w, data); err != nil {
		w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", s.bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gs://%s/%s: %w", s.bucket, object, err)
	}
	log.Printf("[gcs] Uploaded gs://%s/%s", s.bucket, object)
	return nil
}

// DownloadBytes reads an object fully into memory
func (s *Store) DownloadBytes(ctx context.Context, object string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", s.bucket, object, err)
	}
	return data, nil
}

// DownloadToFile streams an object to a local path
func (s *Store) DownloadToFile(ctx context.Context, object, path string) error {
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open gs://%s/%s: %w", s.bucket, object, err)
	}
	defer r.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("download gs://%s/%s: %w", s.bucket, object, err)
	}
	return nil
}

// ListPrompts fetches every .txt object under folder and returns them sorted
// by filename. That lexicographic order is what fixes the scene sequence for
// the rest of the pipeline.
func (s *Store) ListPrompts(ctx context.Context, folder string) ([]types.Prompt, error) {
	if folder != "" && !strings.HasSuffix(folder, "/") {
		folder += "/"
	}
	log.Printf("[gcs] Fetching prompts from gs://%s/%s...", s.bucket, folder)

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: folder})

	byName := make(map[string]string)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", s.bucket, folder, err)
		}
		if !strings.HasSuffix(attrs.Name, ".txt") {
			continue
		}
		name := attrs.Name[strings.LastIndex(attrs.Name, "/")+1:]
		if name == "" {
			continue
		}
		data, err := s.DownloadBytes(ctx, attrs.Name)
		if err != nil {
			return nil, err
		}
		byName[name] = string(data)
	}

	if len(byName) == 0 {
		log.Printf("[gcs] ⚠️  No .txt files found in gs://%s/%s", s.bucket, folder)
		return nil, nil
	}

	prompts := SortPrompts(byName)
	log.Printf("[gcs] Found and sorted %d prompts", len(prompts))
	return prompts, nil
}

// SortPrompts orders a filename→content map by lexicographic filename
func SortPrompts(byName map[string]string) []types.Prompt {
	keys := make([]string, 0, len(byName))
	for k := range byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	prompts := make([]types.Prompt, 0, len(keys))
	for _, k := range keys {
		prompts = append(prompts, types.Prompt{Key: k, Text: byName[k]})
	}
	return prompts
}
