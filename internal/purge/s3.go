package purge

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Config struct {
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	IndexFile       string `json:"index_file"`
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Purger removes pre-rendered snapshots that a CDN serves from a bucket.
// A URL /pds/42/tok maps to {prefix}/pds/42/tok/{index_file}.
type s3Purger struct {
	client    objectDeleter
	bucket    string
	prefix    string
	indexFile string
}

func init() {
	Register("s3", createS3Purger)
}

func createS3Purger(args interface{}) (Purger, error) {
	cfg := &s3Config{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("s3 purge bucket/access_key_id/secret_access_key are required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return newS3Purger(client, cfg.Bucket, cfg.Prefix, cfg.IndexFile), nil
}

func newS3Purger(client objectDeleter, bucket, prefix, indexFile string) *s3Purger {
	if indexFile == "" {
		indexFile = "index.html"
	}
	return &s3Purger{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), indexFile: indexFile}
}

func (p *s3Purger) Name() string {
	return "s3"
}

func (p *s3Purger) objectKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	key := path.Join(p.prefix, u.Path, p.indexFile)
	return strings.TrimPrefix(key, "/"), nil
}

func (p *s3Purger) Purge(ctx context.Context, rawURL string) error {
	key, err := p.objectKey(rawURL)
	if err != nil {
		return err
	}
	_, err = p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	return err
}
