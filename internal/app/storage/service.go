/*
Package storage issues presigned uploads for profile avatars against an
S3-compatible bucket. The gateway never proxies file bytes; the browser PUTs
straight to the presigned URL.
*/
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"mentorlink/internal/pkg/errs"
)

const (
	// MaxAvatarBytes is the largest avatar accepted for upload.
	MaxAvatarBytes = 5 << 20

	// PresignExpiry is how long an upload URL stays valid.
	PresignExpiry = 10 * time.Minute
)

// allowed avatar MIME types and the file extensions that may carry them.
var allowedAvatarTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// AssetBaseURL is the public origin objects are served from. Empty means
	// path-style URLs on the S3 endpoint.
	AssetBaseURL string
}

// Service is the storage surface used by the gateway.
type Service interface {
	// PresignUpload generates a pre-signed PUT URL for the given key.
	PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error)

	// PublicURL returns the URL the stored object is served from.
	PublicURL(key string) string
}

// NewService initializes the S3-compatible implementation.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}

// ValidateAvatar checks an avatar upload request before anything is signed.
func ValidateAvatar(fileName, mimeType string, fileSize int64) *errs.CustomError {
	exts, ok := allowedAvatarTypes[strings.ToLower(mimeType)]
	if !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(path.Ext(fileName))
	matched := false
	for _, allowed := range exts {
		if ext == allowed {
			matched = true
			break
		}
	}
	if !matched {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if fileSize > MaxAvatarBytes {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// AvatarKey builds a collision-free object key for a user's avatar.
func AvatarKey(userID, fileName string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), strings.ToLower(path.Ext(fileName)))
}
