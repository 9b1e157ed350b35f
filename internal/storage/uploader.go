package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

var (
	ErrUpload     = errors.New("upload_failed")
	ErrResolveURL = errors.New("url_resolution_failed")
)

// Uploader writes listing images into a write-once bucket namespace and
// returns a publicly resolvable URL.
type Uploader struct {
	client *gcs.Client
	bucket string
}

func NewUploader(ctx context.Context, bucket, credentialsFile string) (*Uploader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

// ObjectName builds a collision-resistant name: millisecond timestamp
// prefix, random suffix, lower-cased extension from the content type.
func ObjectName(contentType string, now time.Time) string {
	ext := "jpg"
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		ext = "png"
	case "image/webp":
		ext = "webp"
	case "image/gif":
		ext = "gif"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("listings/%d-%s.%s", now.UnixMilli(), suffix, ext)
}

// Upload writes the image and returns its public URL. The write carries
// a DoesNotExist precondition: a name collision fails instead of
// overwriting. A failed URL resolution leaves the written object in
// place; no cleanup is attempted.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if u.bucket == "" {
		return "", fmt.Errorf("%w: storage bucket not configured", ErrResolveURL)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image payload", ErrUpload)
	}

	name := ObjectName(contentType, time.Now())
	token := uuid.NewString()

	obj := u.client.Bucket(u.bucket).Object(name).If(gcs.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucket, url.PathEscape(name), token)
	log.Info().Str("object", name).Int("bytes", len(data)).Msg("image uploaded")
	return publicURL, nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}
