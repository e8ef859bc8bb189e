package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/oklog/ulid/v2"

	"github.com/standee-works/customizer/internal/services"
)

var (
	errNoClient       = errors.New("storage: client is required")
	errNoBucket       = errors.New("storage: bucket name is required")
	errNotDataURI     = errors.New("storage: value is not a base64 data URI")
	errEmptyImage     = errors.New("storage: image payload is empty")
	errInvalidPayload = errors.New("storage: image payload is not valid base64")
)

var dataURIPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// ImagePayload is a decoded data-URI image.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a base64 data URI into its MIME type and raw bytes.
func ParseDataURI(dataURI string) (ImagePayload, error) {
	match := dataURIPattern.FindStringSubmatch(strings.TrimSpace(dataURI))
	if match == nil {
		return ImagePayload{}, errNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return ImagePayload{}, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if len(data) == 0 {
		return ImagePayload{}, errEmptyImage
	}
	return ImagePayload{MIMEType: match[1], Data: data}, nil
}

// Uploader writes customer images into a bucket and returns their hosted URLs.
type Uploader struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	now           func() time.Time
	entropy       io.Reader
}

var _ services.AssetStore = (*Uploader)(nil)

// UploaderOption customises uploader behaviour.
type UploaderOption func(*Uploader)

// WithPublicBaseURL overrides the storage.googleapis.com URL prefix, for
// buckets fronted by a CDN.
func WithPublicBaseURL(baseURL string) UploaderOption {
	return func(u *Uploader) {
		u.publicBaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithUploaderClock injects a custom clock primarily for tests.
func WithUploaderClock(clock func() time.Time) UploaderOption {
	return func(u *Uploader) {
		if clock != nil {
			u.now = clock
		}
	}
}

// WithUploaderEntropy overrides the entropy source used for object key ULIDs.
func WithUploaderEntropy(entropy io.Reader) UploaderOption {
	return func(u *Uploader) {
		if entropy != nil {
			u.entropy = entropy
		}
	}
}

// NewUploader constructs an Uploader writing into the given bucket.
func NewUploader(client *storage.Client, bucket string, opts ...UploaderOption) (*Uploader, error) {
	if client == nil {
		return nil, errNoClient
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errNoBucket
	}

	uploader := &Uploader{
		client: client,
		bucket: strings.TrimSpace(bucket),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(uploader)
		}
	}
	if uploader.entropy == nil {
		seed := uploader.now().UnixNano()
		uploader.entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
	}
	return uploader, nil
}

// Upload decodes the command's data URI, writes it under a key derived from
// the order number and a ULID, and returns the object's public URL.
func (u *Uploader) Upload(ctx context.Context, cmd services.UploadAssetCommand) (string, error) {
	payload, err := ParseDataURI(cmd.DataURI)
	if err != nil {
		return "", err
	}

	key := u.objectKey(cmd, payload.MIMEType)
	writer := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = payload.MIMEType

	if _, err := writer.Write(payload.Data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("storage: write object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize object %s: %w", key, err)
	}
	return u.publicURL(key), nil
}

func (u *Uploader) objectKey(cmd services.UploadAssetCommand, mimeType string) string {
	prefix := "assets"
	switch cmd.Kind {
	case services.AssetKindLogo:
		prefix = "logos"
	case services.AssetKindUPI:
		prefix = "upi"
	}

	hint := sanitizeFilename(cmd.FilenameHint)
	if hint == "" {
		hint = "image"
	}

	id := ulid.MustNew(ulid.Timestamp(u.now()), u.entropy)
	return fmt.Sprintf("%s/%s-%s-%s.%s", prefix, sanitizeFilename(cmd.OrderNumber), id, hint, extensionForMIME(mimeType))
}

func (u *Uploader) publicURL(key string) string {
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, key)
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w.\-]+`)

func sanitizeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if len(cleaned) > 120 {
		cleaned = cleaned[:120]
	}
	return cleaned
}

func extensionForMIME(mimeType string) string {
	parts := strings.SplitN(mimeType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "bin"
	}
	// image/svg+xml uploads land as .svg
	return strings.SplitN(parts[1], "+", 2)[0]
}
