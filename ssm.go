package envfmt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// MaxPageSize is the largest page GetParametersByPath will return.
const MaxPageSize = 10

// Client is the SSM client.
type Client interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// Parameter is a single value read from Parameter Store, keyed by its full
// path.
type Parameter struct {
	Name  string
	Value string
}

// A SourceError is returned when parameters could not be listed. It matches
// ErrSourceUnavailable and unwraps to the underlying cause.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return fmt.Sprintf("%v: list %s (%s): %v", ErrSourceUnavailable, e.Path, apiErr.ErrorCode(), e.Err)
	}
	return fmt.Sprintf("%v: list %s: %v", ErrSourceUnavailable, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is reports ErrSourceUnavailable as a match.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// ParamStore lists parameters from SSM Parameter Store.
type ParamStore struct {
	pageSize  int32
	recursive bool
	log       *zap.Logger

	cfg *aws.Config
	cli Client
}

// An Option sets a configuration option in the ParamStore.
type Option func(s *ParamStore)

// NewParamStore creates a new parameter store.
//
// The SSM client is taken from WithClient, or built from WithConfig. If
// neither was passed the default aws config chain is loaded.
func NewParamStore(options ...Option) (*ParamStore, error) {
	s := &ParamStore{
		// Defaults
		pageSize:  MaxPageSize,
		recursive: true,
		log:       zap.NewNop(),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.pageSize < 1 || s.pageSize > MaxPageSize {
		return nil, fmt.Errorf("page size %d out of range [1, %d]", s.pageSize, MaxPageSize)
	}

	if s.cli == nil {
		if s.cfg == nil {
			cfg, err := config.LoadDefaultConfig(context.Background())
			if err != nil {
				return nil, fmt.Errorf("load default aws config: %w", err)
			}
			s.cfg = &cfg
		}
		s.cli = ssm.NewFromConfig(*s.cfg)
	}

	return s, nil
}

// WithClient sets the SSM client to use. It takes precedence over
// WithConfig.
func WithClient(client Client) Option {
	return func(s *ParamStore) {
		s.cli = client
	}
}

// WithConfig sets the aws config the SSM client is built from. Region and
// credentials are resolved by the caller.
func WithConfig(cfg aws.Config) Option {
	return func(s *ParamStore) {
		s.cfg = &cfg
	}
}

// WithPageSize sets how many parameters are requested per call, between 1
// and MaxPageSize.
func WithPageSize(n int32) Option {
	return func(s *ParamStore) {
		s.pageSize = n
	}
}

// WithRecursive controls whether parameters in nested paths are listed.
// Defaults to true.
func WithRecursive(recursive bool) Option {
	return func(s *ParamStore) {
		s.recursive = recursive
	}
}

// WithLogger sets the logger used to trace requests.
func WithLogger(log *zap.Logger) Option {
	return func(s *ParamStore) {
		if log != nil {
			s.log = log
		}
	}
}

// List returns all parameters under path, with secure strings decrypted.
//
// Pages are requested one at a time until the service stops returning a
// next token. A path with no parameters yields an empty slice and no error.
func (s *ParamStore) List(ctx context.Context, path string) ([]Parameter, error) {
	path = queryPath(path)
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(s.recursive),
		WithDecryption: aws.Bool(true),
		MaxResults:     aws.Int32(s.pageSize),
	}

	paginator := ssm.NewGetParametersByPathPaginator(s.cli, input)

	params := []Parameter{}
	var lastToken string
	for page := 1; paginator.HasMorePages(); page++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &SourceError{Path: path, Err: err}
		}
		for _, p := range out.Parameters {
			params = append(params, Parameter{
				Name:  aws.ToString(p.Name),
				Value: aws.ToString(p.Value),
			})
		}
		s.log.Debug("read parameter page",
			zap.String("path", path),
			zap.Int("page", page),
			zap.Int("count", len(out.Parameters)),
		)

		next := aws.ToString(out.NextToken)
		if next != "" && next == lastToken {
			return nil, &SourceError{Path: path, Err: fmt.Errorf("duplicate next token on page %d", page)}
		}
		lastToken = next
	}

	s.log.Debug("listed parameters", zap.String("path", path), zap.Int("total", len(params)))
	return params, nil
}

// queryPath formats path the way GetParametersByPath expects it: a single
// leading / and no trailing /, except for the root.
func queryPath(path string) string {
	return "/" + strings.Trim(path, "/")
}
