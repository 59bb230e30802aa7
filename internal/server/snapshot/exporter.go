// Package snapshot periodically exports the full canvas to
// S3-compatible object storage so the grid can be rebuilt or audited
// without replaying the placements table.
package snapshot

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
	"github.com/google/uuid"

	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/config"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

// GridSource supplies the placements to snapshot.
type GridSource interface {
	Grid(ctx context.Context) ([]*models.Placement, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Exporter struct {
	source   GridSource
	config   *config.Config
	logger   logging.Logger
	s3Client objectPutter
}

func NewExporter(source GridSource, cfg *config.Config, logger logging.Logger) *Exporter {
	return &Exporter{
		source: source,
		config: cfg,
		logger: logger.With("module", "snapshot"),
	}
}

func GetSnapshotStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("snapshots/%d/%d/%d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (e *Exporter) getS3Client(ctx context.Context) (objectPutter, error) {
	if e.s3Client != nil {
		return e.s3Client, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(e.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.config.S3RootUser,
			e.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	e.s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(e.config.S3BaseEndpoint)
	})

	return e.s3Client, nil
}

// ExportOnce uploads the current grid as one JSON object and returns
// its storage key.
func (e *Exporter) ExportOnce(ctx context.Context) (string, error) {

	grid, err := e.source.Grid(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: reading grid: %w", err)
	}

	body, err := json.Marshal(grid)
	if err != nil {
		return "", fmt.Errorf("snapshot: encoding grid: %w", err)
	}

	client, err := e.getS3Client(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: s3 client: %w", err)
	}

	bucket := e.config.S3Bucket
	key := GetSnapshotStorageKey()
	contentType := "application/json"

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("snapshot: upload: %w", err)
	}

	return key, nil
}

// Run exports on every tick until the context is cancelled. A failed
// export is logged and retried on the next tick; it never stops the
// loop.
func (e *Exporter) Run(ctx context.Context) {

	if e.config.SnapshotInterval <= 0 {
		e.logger.Info(ctx, "snapshot exporter disabled")
		return
	}

	ticker := time.NewTicker(e.config.SnapshotInterval)
	defer ticker.Stop()

	e.logger.Info(ctx, "snapshot exporter started", "interval", e.config.SnapshotInterval.String())

	for {
		select {
		case <-ctx.Done():
			e.logger.Info(ctx, "snapshot exporter stopped")
			return
		case <-ticker.C:
			key, err := e.ExportOnce(ctx)
			if err != nil {
				e.logger.Error(ctx, "snapshot export failed", "error", err.Error())
				continue
			}
			e.logger.Info(ctx, "snapshot exported", "key", key)
		}
	}
}
