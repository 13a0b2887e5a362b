// Package mediaconvert implements backend.Backend on top of AWS Elemental
// MediaConvert. Sources that are not reachable through a public URL are
// uploaded to the destination bucket first.
package mediaconvert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	mc "github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"media-transcoding-service/internal/backend"
)

// Name is the registry key and the backend identifier stored on jobs.
const Name = "mediaconvert"

const DefaultRoleName = "MediaConvert_Default_Role"

const (
	kindS3Upload = "S3UploadError"
	kindJob      = "MediaConvertJobError"
)

type Config struct {
	Region   string
	Bucket   string
	RoleName string
	// Endpoint overrides the account-specific MediaConvert endpoint.
	Endpoint string
}

type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type IAMAPI interface {
	GetRole(ctx context.Context, in *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

type JobsAPI interface {
	CreateJob(ctx context.Context, in *mc.CreateJobInput, optFns ...func(*mc.Options)) (*mc.CreateJobOutput, error)
}

// Clients bundles the AWS APIs the backend talks to.
type Clients struct {
	S3   S3API
	IAM  IAMAPI
	Jobs JobsAPI
}

// ClientsFunc builds Clients. It is invoked at most once per Backend.
type ClientsFunc func(ctx context.Context) (Clients, error)

type Backend struct {
	cfg    Config
	opener backend.Opener
	log    *slog.Logger

	newClients ClientsFunc
	once       sync.Once
	clients    Clients
	clientsErr error

	roleMu  sync.Mutex
	roleARN string
}

type Option func(*Backend)

// WithClients replaces the AWS SDK clients. Tests use it to avoid the network.
func WithClients(fn ClientsFunc) Option {
	return func(b *Backend) { b.newClients = fn }
}

func New(cfg Config, opener backend.Opener, logger *slog.Logger, opts ...Option) (*Backend, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, backend.NewConfigurationError("AWS_STORAGE_BUCKET_NAME", errors.New("required for MediaConvert transcoding"))
	}
	if cfg.RoleName == "" {
		cfg.RoleName = DefaultRoleName
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Backend{
		cfg:    cfg,
		opener: opener,
		log:    logger.With("backend", Name),
	}
	b.newClients = b.defaultClients
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Backend) defaultClients(ctx context.Context) (Clients, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if b.cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(b.cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return Clients{}, err
	}

	jobs := mc.NewFromConfig(awsCfg, func(o *mc.Options) {
		if b.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(b.cfg.Endpoint)
		}
	})
	return Clients{
		S3:   s3.NewFromConfig(awsCfg),
		IAM:  iam.NewFromConfig(awsCfg),
		Jobs: jobs,
	}, nil
}

func (b *Backend) awsClients(ctx context.Context) (Clients, error) {
	b.once.Do(func() {
		b.clients, b.clientsErr = b.newClients(ctx)
		if b.clientsErr != nil {
			b.clientsErr = backend.NewConfigurationError("aws", b.clientsErr)
		}
	})
	return b.clients, b.clientsErr
}

func (b *Backend) StartTranscode(ctx context.Context, file string) (*backend.StartResult, error) {
	clients, err := b.awsClients(ctx)
	if err != nil {
		return nil, err
	}

	source, err := b.ensureAvailable(ctx, clients.S3, file)
	if err != nil {
		return nil, err
	}

	roleARN, err := b.role(ctx, clients.IAM)
	if err != nil {
		return nil, err
	}

	destination := "s3://" + b.cfg.Bucket + "/"
	out, err := clients.Jobs.CreateJob(ctx, &mc.CreateJobInput{
		Role:     aws.String(roleARN),
		Settings: webmVP8Settings(source, destination),
	})
	if err != nil {
		if isAPIError(err) {
			return nil, backend.NewTranscodingError(kindJob, fmt.Errorf("failed to create MediaConvert job: %w", err))
		}
		return nil, err
	}
	if out == nil || out.Job == nil || aws.ToString(out.Job.Id) == "" {
		return nil, backend.NewTranscodingError(kindJob, errors.New("create job response carries no job id"))
	}

	raw, err := json.Marshal(map[string]any{
		"Job": map[string]any{
			"Id":     aws.ToString(out.Job.Id),
			"Arn":    aws.ToString(out.Job.Arn),
			"Status": string(out.Job.Status),
		},
	})
	if err != nil {
		return nil, err
	}

	b.log.Info("mediaconvert job created", "job_reference", aws.ToString(out.Job.Id), "source", source)
	return &backend.StartResult{JobReference: aws.ToString(out.Job.Id), Raw: raw}, nil
}

func (b *Backend) StopTranscode(ctx context.Context, jobReference string) error {
	return backend.ErrStopNotSupported
}

// ensureAvailable returns a URL MediaConvert can read. Web URLs pass through;
// anything else is uploaded to the bucket root under its base name.
func (b *Backend) ensureAvailable(ctx context.Context, api S3API, file string) (string, error) {
	if u, err := url.Parse(file); err == nil && u.Host != "" {
		return file, nil
	}
	if b.opener == nil {
		return "", fmt.Errorf("no storage configured to read %q", file)
	}

	rc, err := b.opener.Open(ctx, file)
	if err != nil {
		return "", fmt.Errorf("open source %q: %w", file, err)
	}
	defer rc.Close()

	key := path.Base(file)
	if _, err := api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
		Body:   rc,
	}); err != nil {
		if isAPIError(err) {
			return "", backend.NewTranscodingError(kindS3Upload, fmt.Errorf("failed to upload file to S3: %w", err))
		}
		return "", err
	}
	return "s3://" + b.cfg.Bucket + "/" + key, nil
}

func (b *Backend) role(ctx context.Context, api IAMAPI) (string, error) {
	b.roleMu.Lock()
	defer b.roleMu.Unlock()

	if b.roleARN != "" {
		return b.roleARN, nil
	}

	out, err := api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(b.cfg.RoleName)})
	if err != nil {
		if isAPIError(err) {
			return "", backend.NewConfigurationError("AWS_MEDIACONVERT_ROLE_NAME",
				fmt.Errorf("failed to get IAM role %q: %w", b.cfg.RoleName, err))
		}
		return "", err
	}
	if out == nil || out.Role == nil || aws.ToString(out.Role.Arn) == "" {
		return "", backend.NewConfigurationError("AWS_MEDIACONVERT_ROLE_NAME",
			fmt.Errorf("IAM role %q has no ARN", b.cfg.RoleName))
	}

	b.roleARN = aws.ToString(out.Role.Arn)
	return b.roleARN, nil
}

func isAPIError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr)
}

// Register adds the MediaConvert factory to reg under Name.
func Register(reg *backend.Registry, cfg Config, opener backend.Opener, logger *slog.Logger, opts ...Option) {
	reg.Register(Name, func(ctx context.Context) (backend.Backend, error) {
		return New(cfg, opener, logger, opts...)
	})
}
