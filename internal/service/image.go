package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStore persists an uploaded image and returns a retrievable URL.
// Recipe writes treat the returned reference as an opaque field.
type ImageStore interface {
	UploadImage(ctx context.Context, data []byte, contentType string) (string, error)
}

// DecodeBase64Image parses a "data:image/<type>;base64,<payload>" data URI.
func DecodeBase64Image(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, "", fmt.Errorf("image must be a base64 data URI")
	}
	meta, payload, found := strings.Cut(dataURI[len("data:"):], ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", fmt.Errorf("image data URI must be base64-encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return data, contentType, nil
}

// S3ImageService stores recipe images in an S3 bucket.
type S3ImageService struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3ImageService(client *s3.Client, bucket, region string) *S3ImageService {
	return &S3ImageService{
		client: client,
		bucket: bucket,
		region: region,
	}
}

// UploadImage puts the image under recipes/<uuid>.<ext> and returns its URL.
func (s *S3ImageService) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := "png"
	if _, sub, found := strings.Cut(contentType, "/"); found && sub != "" {
		ext = sub
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
