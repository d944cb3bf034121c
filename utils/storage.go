package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseStorage uploads files to one public Supabase bucket.
type SupabaseStorage struct {
	client *storage.Client
	bucket string
}

func NewSupabaseStorage(supabaseURL, key, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		client: storage.NewClient(strings.TrimRight(supabaseURL, "/")+"/storage/v1", key, nil),
		bucket: bucket,
	}
}

// Upload stores r at objectPath, replacing any previous object, and returns its public URL.
func (s *SupabaseStorage) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, r, options); err != nil {
		return "", fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	return s.client.GetPublicUrl(s.bucket, objectPath).SignedURL, nil
}

// LocalStorage writes files under dir; they are served back under baseURL.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *LocalStorage) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + objectPath)[1:]
	dst := filepath.Join(l.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return l.baseURL + "/uploads/" + clean, nil
}
