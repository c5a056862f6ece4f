package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Initialize the S3 client
func getS3Client() (*s3.Client, error) {
	// Load the default AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, err
	}
	// Create an S3 client using the loaded configuration
	client := s3.NewFromConfig(cfg)
	return client, nil
}

// Get the S3 uploader
func getS3Uploader(client *s3.Client) *manager.Uploader {
	return manager.NewUploader(client)
}

// UploadFileToS3 stores a reply attachment under a timestamped key so repeated
// uploads of the same filename never clobber each other.
func UploadFileToS3(ctx context.Context, file *multipart.FileHeader) (*manager.UploadOutput, error) {
	bucketName := LoadDotEnv("AWS_S3_BUCKET_NAME")
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := fmt.Sprintf("attachments/%d_%s", time.Now().Unix(), file.Filename)

	log.Info().Str("filename", file.Filename).Str("key", key).Msg("Uploading attachment")
	s3Client, err := getS3Client()
	if err != nil {
		log.Error().Err(err).Msg("Error creating S3 client")
		return nil, err
	}
	uploader := getS3Uploader(s3Client)

	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
		Body:   src,
	})
	if err != nil {
		log.Error().Err(err).Msg("Error uploading attachment")
		return result, err
	}

	return result, nil
}
