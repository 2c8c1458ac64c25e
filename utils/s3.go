package utils

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var s3Client *s3.Client

func InitS3() {
	s3Region := os.Getenv("S3_REGION")
	if s3Region == "" {
		s3Region = os.Getenv("AWS_REGION") // fallback
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(s3Region))
	if err != nil {
		log.Fatalf("Unable to load AWS config for S3: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
}

// UploadToBucket stores raw bytes (music track audio) under the given key
// and returns the public URL the client can stream from.
func UploadToBucket(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	// Serve via CDN when configured, raw S3 URL otherwise.
	if cdn := os.Getenv("CDN_URL"); cdn != "" {
		return fmt.Sprintf("%s/%s", cdn, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key), nil
}

// DeleteFromBucket removes a previously uploaded object.
func DeleteFromBucket(ctx context.Context, bucket, key string) error {
	_, err := s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
