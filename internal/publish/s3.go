// Package publish uploads generated reports to object storage.
package publish

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/logging"
)

const (
	S3Scheme      = "s3"
	DefaultRegion = "us-east-1"
)

// Location addresses an object in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l *Location) String() string {
	return S3Scheme + "://" + l.Bucket + "/" + l.Key
}

// IsS3URI reports whether dest should be handled by the S3 publisher.
func IsS3URI(dest string) bool {
	return strings.HasPrefix(dest, S3Scheme+"://")
}

// ParseLocation parses an s3://bucket/key address.
func ParseLocation(uri string) (*Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid object address %s", uri)
	}
	if u.Scheme != S3Scheme {
		return nil, errors.Errorf("unsupported scheme %q in %s, expected %s://bucket/key", u.Scheme, uri, S3Scheme)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return nil, errors.Errorf("object address %s must name a bucket and a key", uri)
	}
	return &Location{Bucket: u.Host, Key: key}, nil
}

// Object is the content uploaded to a location.
type Object struct {
	Location    *Location
	Body        io.Reader
	ContentType string
	Metadata    map[string]string
}

// Publisher uploads objects, or only logs them in dry-run mode.
type Publisher struct {
	uploader s3manageriface.UploaderAPI
	dryRun   bool
	logger   log.FieldLogger
}

// createS3Uploader creates an S3 upload manager with the specified region.
func createS3Uploader(region string) (*s3manager.Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return s3manager.NewUploader(sess), nil
}

// NewPublisher creates a publisher backed by the AWS default credential chain.
func NewPublisher(region string, dryRun bool, logger log.FieldLogger) (*Publisher, error) {
	if region == "" {
		region = DefaultRegion
	}
	uploader, err := createS3Uploader(region)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create S3 client for region %s", region)
	}
	return NewPublisherWithUploader(uploader, dryRun, logger), nil
}

// NewPublisherWithUploader creates a publisher with a custom upload manager.
func NewPublisherWithUploader(uploader s3manageriface.UploaderAPI, dryRun bool, logger log.FieldLogger) *Publisher {
	return &Publisher{uploader: uploader, dryRun: dryRun, logger: logging.OrDiscard(logger)}
}

// Publish uploads obj, returning the address it was stored at.
func (p *Publisher) Publish(ctx context.Context, obj *Object) (string, error) {
	uri := obj.Location.String()
	if p.dryRun {
		p.logger.Warnf("DRY-RUN mode: skipping upload to %s", uri)
		return uri, nil
	}

	input := &s3manager.UploadInput{
		Bucket: aws.String(obj.Location.Bucket),
		Key:    aws.String(obj.Location.Key),
		Body:   obj.Body,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if len(obj.Metadata) > 0 {
		input.Metadata = aws.StringMap(obj.Metadata)
	}

	p.logger.Debugf("uploading object %s", uri)
	if _, err := p.uploader.UploadWithContext(ctx, input); err != nil {
		return "", errors.Wrapf(err, "failed to upload to %s", uri)
	}
	p.logger.Infof("Report published successfully to %s", uri)
	return uri, nil
}
