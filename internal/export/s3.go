package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ManifestEntry is one line of the monthly export manifest.
type ManifestEntry struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
	ExportedAt  string `json:"exported_at"`
}

// S3Uploader archives exported files. If bucket is empty, all operations are no-ops.
type S3Uploader struct {
	bucket string
	client S3API
	logger *logging.Logger
	now    func() time.Time
}

func NewS3Uploader(client S3API, bucket string, logger *logging.Logger) *S3Uploader {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Uploader{bucket: bucket, client: client, logger: logger, now: time.Now}
}

// Enabled returns true if archival is configured.
func (u *S3Uploader) Enabled() bool {
	return u != nil && u.bucket != "" && u.client != nil
}

// Upload stores body under exports/<YYYY>/<MM>/<name> and appends it to the
// month's manifest. It returns the object key, or "" when disabled.
func (u *S3Uploader) Upload(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if !u.Enabled() {
		return "", nil
	}
	now := u.now().UTC()
	key := fmt.Sprintf("exports/%d/%02d/%s", now.Year(), now.Month(), name)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("export: s3 put %s: %w", key, err)
	}
	u.logger.Info("archived export to S3", "s3_key", key, "bytes", len(body))

	entry := ManifestEntry{Key: key, ContentType: contentType, Bytes: len(body), ExportedAt: now.Format(time.RFC3339)}
	if err := u.appendManifest(ctx, now, entry); err != nil {
		// The export itself is stored; a missing manifest line is recoverable.
		u.logger.Warn("failed to append export manifest", "error", err, "s3_key", key)
	}
	return key, nil
}

// appendManifest does a read-modify-write since S3 has no append.
func (u *S3Uploader) appendManifest(ctx context.Context, now time.Time, entry ManifestEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("export: marshal manifest entry: %w", err)
	}
	manifestKey := fmt.Sprintf("exports/manifests/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	getResp, err := u.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			// Rewriting from a partial read would drop earlier lines.
			return fmt.Errorf("export: s3 read manifest: %w", err)
		}
	case isNoSuchKey(err):
		u.logger.Debug("manifest not found, creating new", "key", manifestKey)
	default:
		return fmt.Errorf("export: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("export: s3 put manifest: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}
