package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	fig "github.com/aws/aws-sdk-go-v2/config"
	appconfig "github.com/greenloophq/greenloop/config"
)

// MediaService uploads report photos to S3.
type MediaService interface {
	UploadReportImage(fileHeader *multipart.FileHeader, userID uint) (string, error)
}

type mediaService struct {
	Config   *appconfig.Config
	s3Client *s3.Client
}

func NewMediaService(conf *appconfig.Config) MediaService {
	awsCfg, err := fig.LoadDefaultConfig(context.TODO(),
		fig.WithRegion(conf.AwsRegion),
		fig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AwsAccessKeyID, conf.AwsSecretAccessKey, "")),
	)
	if err != nil {
		log.Printf("failed to load AWS config, media uploads disabled: %v", err)
		return &mediaService{Config: conf}
	}

	return &mediaService{
		Config:   conf,
		s3Client: s3.NewFromConfig(awsCfg),
	}
}

// UploadReportImage decodes the photo, scales it down and uploads the
// JPEG to S3, returning the public URL.
func (m *mediaService) UploadReportImage(fileHeader *multipart.FileHeader, userID uint) (string, error) {
	if m.s3Client == nil {
		return "", fmt.Errorf("media uploads are not configured")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}

	// Cap at 1080px wide; height follows the aspect ratio.
	resized := imaging.Resize(img, 1080, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		return "", fmt.Errorf("failed to encode image: %v", err)
	}

	key := fmt.Sprintf("reports/%d/%s.jpg", userID, uuid.New().String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = m.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Config.AwsBucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %v", err)
	}

	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		m.Config.AwsBucketName, m.Config.AwsRegion, key)
	log.Printf("report image uploaded to S3: %s", fileURL)
	return fileURL, nil
}
