package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"dropbot/types"
)

// Config contains the settings for the run archive bucket. Values fall
// back to the standard AWS config/credential chain when empty.
type Config struct {
	Bucket string
	// Prefix is prepended to every archived key.
	Prefix string
	// Region to use for requests, e.g. "us-east-1".
	Region string
	// Profile selects a named shared config/credentials profile.
	Profile string
	// UsePathStyle forces path-style addressing (useful for some S3-compatible providers).
	UsePathStyle bool
}

// Archiver writes completed ProcessingRun records to S3 as JSON. It is
// a side channel: archive failures are logged, never surfaced into the
// run outcome.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an archiver using the default AWS configuration chain,
// with optional overrides from cfg.
func New(ctx context.Context, cfg Config) (*Archiver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &Archiver{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// RunCompleted archives a run record under runs/<run_id>.json.
// An already archived run is left untouched so replayed notifications
// cannot overwrite the original record.
func (a *Archiver) RunCompleted(ctx context.Context, run *types.ProcessingRun) {
	if archived, err := a.Exists(ctx, run.RunID); err == nil && archived {
		log.Printf("Run %s already archived, skipping", run.RunID)
		return
	}
	if err := a.put(ctx, run); err != nil {
		log.Printf("❌ S3 archive failed for run %s: %v", run.RunID, err)
		return
	}
	log.Printf("✓ Archived run %s to s3://%s/%sruns/%s.json", run.RunID, a.bucket, a.prefix, run.RunID)
}

func (a *Archiver) put(ctx context.Context, run *types.ProcessingRun) error {
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	key := a.prefix + "runs/" + run.RunID + ".json"
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	return err
}

// Exists reports whether a run has already been archived.
func (a *Archiver) Exists(ctx context.Context, runID string) (bool, error) {
	key := a.prefix + "runs/" + runID + ".json"
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}
