package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"cookbook-backend/internal/utils"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type (
	// AwsS3 stores decoded recipe images and returns their public URL.
	AwsS3 interface {
		UploadBase64Image(ctx context.Context, key string, dataURI string) (string, error)
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")

	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to load AWS config: %v", err))
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}
}

// UploadBase64Image accepts a "data:image/...;base64,..." payload, decodes it
// and uploads the bytes under the given key.
func (a *awsS3) UploadBase64Image(ctx context.Context, key string, dataURI string) (string, error) {
	contentType, encoded, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image payload: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(raw),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key), nil
}

func splitDataURI(dataURI string) (contentType, encoded string, err error) {
	if !strings.HasPrefix(dataURI, "data:") {
		// Plain base64 without a data URI wrapper.
		return "image/jpeg", dataURI, nil
	}

	rest := strings.TrimPrefix(dataURI, "data:")
	meta, encoded, found := strings.Cut(rest, ",")
	if !found {
		return "", "", fmt.Errorf("malformed data URI")
	}

	contentType = strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return contentType, encoded, nil
}
