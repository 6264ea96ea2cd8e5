package feeds

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutObjectAPI is the slice of the S3 client the archive needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver keeps every fetched feed document in a bucket, keyed by host,
// day and content hash, so ingestion runs can be replayed.
type S3Archiver struct {
	client S3PutObjectAPI
	bucket string
}

var _ Archiver = (*S3Archiver)(nil)

func NewS3Archiver(client S3PutObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

func (a *S3Archiver) Archive(ctx context.Context, feedURL string, body []byte, fetchedAt time.Time) error {
	key := archiveKey(feedURL, body, fetchedAt)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/rss+xml"),
		Metadata:    map[string]string{"feed-url": feedURL},
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// archiveKey is feeds/<host>/<yyyy-mm-dd>/<hhmmss>-<sha256 prefix>.xml.
func archiveKey(feedURL string, body []byte, fetchedAt time.Time) string {
	host := "unknown"
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}
	sum := sha256.Sum256(body)
	at := fetchedAt.UTC()
	return path.Join("feeds", host, at.Format("2006-01-02"), at.Format("150405")+"-"+hex.EncodeToString(sum[:6])+".xml")
}
