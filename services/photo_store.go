package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/utils"
)

// PhotoStore decides where photo bytes live. Store runs before the database
// write, Discard undoes it when that write fails, Resolve prepares a photo
// for a response.
type PhotoStore interface {
	Store(ctx context.Context, photo *models.Photo, encoded string) error
	Discard(ctx context.Context, photo *models.Photo)
	Resolve(ctx context.Context, photo *models.Photo) error
}

// InlinePhotoStore keeps the encoded image inside the photos row
type InlinePhotoStore struct{}

// Store validates the photo and keeps it inline
func (InlinePhotoStore) Store(ctx context.Context, photo *models.Photo, encoded string) error {
	if err := utils.ValidatePhotoData(encoded); err != nil {
		return err
	}
	photo.ImageData = strings.TrimSpace(encoded)
	return nil
}

// Discard is a no-op; the row never committed
func (InlinePhotoStore) Discard(ctx context.Context, photo *models.Photo) {}

// Resolve is a no-op; the data is already on the row
func (InlinePhotoStore) Resolve(ctx context.Context, photo *models.Photo) error {
	return nil
}

// S3PhotoStore uploads decoded photos to an object store and keeps the key
type S3PhotoStore struct {
	s3Service S3Interface
}

// NewS3PhotoStore creates a photo store backed by s3Service
func NewS3PhotoStore(s3Service S3Interface) *S3PhotoStore {
	return &S3PhotoStore{s3Service: s3Service}
}

// Store uploads the photo to photos/{enquiryId}/{uuid}{ext}
func (s *S3PhotoStore) Store(ctx context.Context, photo *models.Photo, encoded string) error {
	decoded, err := utils.DecodePhotoData(encoded)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("photos/%d/%s%s", photo.EnquiryID, uuid.NewString(), decoded.Extension)
	if err := s.s3Service.UploadObject(ctx, key, decoded.ContentType, decoded.Data); err != nil {
		return fmt.Errorf("failed to upload photo: %w", err)
	}

	photo.StorageKey = &key
	photo.ImageData = ""
	return nil
}

// Discard deletes an uploaded object whose row was never committed
func (s *S3PhotoStore) Discard(ctx context.Context, photo *models.Photo) {
	if photo.StorageKey == nil {
		return
	}
	if err := s.s3Service.DeleteObject(ctx, *photo.StorageKey); err != nil {
		log.Printf("warning: failed to discard photo %s: %v", *photo.StorageKey, err)
	}
}

// Resolve fills ImageURL with a presigned link
func (s *S3PhotoStore) Resolve(ctx context.Context, photo *models.Photo) error {
	if photo.StorageKey == nil {
		return nil
	}
	url, err := s.s3Service.GetPresignedURL(ctx, *photo.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to generate photo URL: %w", err)
	}
	photo.ImageURL = url
	return nil
}

var photoStoreInstance PhotoStore = InlinePhotoStore{}

// GetPhotoStore returns the process-wide photo store
func GetPhotoStore() PhotoStore {
	return photoStoreInstance
}

// SetPhotoStore sets the process-wide photo store
func SetPhotoStore(store PhotoStore) {
	photoStoreInstance = store
}
