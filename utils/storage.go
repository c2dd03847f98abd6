package utils

import (
	"context"
	"fmt"
	"io"
	"lms/config"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// FileStorage stores uploaded submission files and returns a URL for them.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

// NewFileStorage returns the upload service client when UploadServiceURL is
// configured and local disk storage otherwise.
func NewFileStorage(cfg *config.Config) FileStorage {
	if cfg.UploadServiceURL != "" {
		return NewHTTPStorage(cfg.UploadServiceURL, cfg.UploadServiceToken)
	}
	return NewLocalStorage(cfg.UploadDir, "/uploads")
}

func objectName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// HTTPStorage talks to an external upload service. Uploads are sent once:
// the multipart body streams from the opened file and cannot be replayed, so
// only deletes are retried.
type HTTPStorage struct {
	client *resty.Client
	upload *resty.Client
}

type uploadResponse struct {
	URL string `json:"url"`
}

func NewHTTPStorage(baseURL, token string) *HTTPStorage {
	return &HTTPStorage{
		client: newStorageClient(baseURL, token).SetRetryCount(2),
		upload: newStorageClient(baseURL, token),
	}
}

func newStorageClient(baseURL, token string) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)
	if token != "" {
		client.SetAuthToken(token)
	}
	return client
}

func (s *HTTPStorage) Save(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	var out uploadResponse
	resp, err := s.upload.R().
		SetContext(ctx).
		SetFileReader("file", objectName(file.Filename), src).
		SetFormData(map[string]string{"folder": folder}).
		SetResult(&out).
		Post("/upload")
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Filename, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: status %d: %s", file.Filename, resp.StatusCode(), resp.String())
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload %s: response has no url", file.Filename)
	}
	return out.URL, nil
}

func (s *HTTPStorage) Delete(ctx context.Context, url string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("url", url).
		Delete("/files")
	if err != nil {
		return fmt.Errorf("delete %s: %w", url, err)
	}
	if resp.IsError() && resp.StatusCode() != 404 {
		return fmt.Errorf("delete %s: status %d", url, resp.StatusCode())
	}
	return nil
}

// LocalStorage writes files under Dir and serves them below URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
}

func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStorage) Save(_ context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := filepath.Join(s.Dir, filepath.Clean("/"+folder))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	name := objectName(file.Filename)
	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return path.Join(s.URLPrefix, filepath.ToSlash(filepath.Clean("/"+folder)), name), nil
}

// Delete removes a file previously returned by Save. URLs outside
// URLPrefix are ignored.
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.URLPrefix+"/")
	if !ok {
		return nil
	}
	target := filepath.Join(s.Dir, filepath.Clean("/"+filepath.FromSlash(rel)))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
