package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"embedding_admin/internal/logging"
)

// Writer persists a batch of events and returns where they went
type Writer interface {
	WriteBatch(ctx context.Context, events []Event) (string, error)
}

// S3API is the part of the S3 client the writer uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3Writer. Endpoint and static credentials are for
// S3-compatible stores such as MinIO; leave them empty for AWS.
type S3Config struct {
	Bucket    string
	Region    string
	Prefix    string
	PodName   string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Writer writes batches as JSON Lines objects
type S3Writer struct {
	client  S3API
	bucket  string
	prefix  string
	podName string
	now     func() time.Time
	logger  *logging.Logger
}

// NewS3Writer creates an S3 writer from the default AWS credential chain
func NewS3Writer(ctx context.Context, cfg S3Config) (*S3Writer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3WriterWithClient(client, cfg.Bucket, cfg.Prefix, cfg.PodName), nil
}

// NewS3WriterWithClient creates an S3 writer on an existing client
func NewS3WriterWithClient(client S3API, bucket, prefix, podName string) *S3Writer {
	return &S3Writer{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		podName: podName,
		now:     time.Now,
		logger:  logging.NewLogger("audit-s3"),
	}
}

// objectKey returns <prefix>YYYY/MM/DD/<pod>-<YYYYMMDD-HHMMSS>-<nanos>.jsonl
func (w *S3Writer) objectKey(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s%04d/%02d/%02d/%s-%s-%d.jsonl",
		w.prefix,
		now.Year(),
		now.Month(),
		now.Day(),
		w.podName,
		now.Format("20060102-150405"),
		now.Nanosecond(),
	)
}

// WriteBatch uploads events as one object and returns its key
func (w *S3Writer) WriteBatch(ctx context.Context, events []Event) (string, error) {
	if len(events) == 0 {
		return "", nil
	}

	body, err := encodeJSONLines(events)
	if err != nil {
		return "", err
	}

	key := w.objectKey(w.now())
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	w.logger.Info("Wrote audit batch to S3", "key", key, "count", len(events), "bytes", len(body))
	return key, nil
}

func encodeJSONLines(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return nil, fmt.Errorf("failed to encode audit event %s: %w", ev.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// LogWriter writes each event as a log line. Used when no bucket is configured.
type LogWriter struct {
	logger *logging.Logger
}

// NewLogWriter creates a log writer
func NewLogWriter(logger *logging.Logger) *LogWriter {
	if logger == nil {
		logger = logging.NewLogger("audit")
	}
	return &LogWriter{logger: logger}
}

// WriteBatch logs every event
func (w *LogWriter) WriteBatch(ctx context.Context, events []Event) (string, error) {
	for _, ev := range events {
		w.logger.Info("intent",
			"id", ev.ID,
			"session", ev.SessionID,
			"admin", ev.AdminID,
			"intent", ev.Intent,
			"provider", ev.ProviderType,
			"model", ev.ModelName,
		)
	}
	return "log", nil
}
