// Package storage fetches and stores paragraph documents in S3-compatible
// object storage. Documents arrive pre-split into ordered paragraphs by
// an upstream extraction service.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lattice-kg/lattice/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ParagraphDocument is the stored form of one extracted document: its
// display name and the ordered paragraph sequence.
type ParagraphDocument struct {
	Name       string   `json:"name"`
	Paragraphs []string `json:"paragraphs"`
}

// NewS3Client builds an S3 client from environment configuration.
func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// GetFile downloads an object by key.
func GetFile(ctx context.Context, client *s3.Client, key string) ([]byte, error) {
	bucket := util.GetEnvString("AWS_BUCKET", "lattice")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	return buf.Bytes(), nil
}

// FetchParagraphDocument downloads and decodes one paragraph document.
func FetchParagraphDocument(ctx context.Context, client *s3.Client, key string) (*ParagraphDocument, error) {
	raw, err := GetFile(ctx, client, key)
	if err != nil {
		return nil, err
	}

	var doc ParagraphDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode paragraph document %s: %w", key, err)
	}
	if len(doc.Paragraphs) == 0 {
		return nil, fmt.Errorf("paragraph document %s is empty", key)
	}
	return &doc, nil
}

// PutParagraphDocument uploads a paragraph document and returns its key.
func PutParagraphDocument(ctx context.Context, client *s3.Client, workspaceID, docID string, doc *ParagraphDocument) (string, error) {
	bucket := util.GetEnvString("AWS_BUCKET", "lattice")

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode paragraph document: %w", err)
	}

	key := fmt.Sprintf("%s/documents/%s.json", workspaceID, docID)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload paragraph document: %w", err)
	}
	return key, nil
}

// DeleteFile removes an object by key.
func DeleteFile(ctx context.Context, client *s3.Client, key string) error {
	bucket := util.GetEnvString("AWS_BUCKET", "lattice")
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
