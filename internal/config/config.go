// Package config resolves how envfmt talks to AWS: region, profile and MFA
// credentials, from flags first and the environment second.
package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/spf13/pflag"

	"github.com/akupila/envfmt"
	"github.com/akupila/envfmt/internal/logger"
)

// DefaultRegion is used when neither the flags nor the aws environment name
// a region.
const DefaultRegion = "us-east-1"

// LogLevelEnv overrides the log level when --debug is not set.
const LogLevelEnv = "ENVFMT_LOG_LEVEL"

// Config holds everything one invocation needs.
type Config struct {
	Path   string
	Format envfmt.Format

	Region   string // --region, wins over the aws environment
	Profile  string // shared config profile
	MFA      bool   // prompt for an MFA token
	MFAToken string // MFA token given on the command line
	Out      string // output file, stdout when empty
	Debug    bool
}

// BindFlags registers the flags that fill c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Region, "region", "r", c.Region, "AWS region to query (default from the aws environment, else "+DefaultRegion+")")
	fs.StringVarP(&c.Profile, "profile", "p", c.Profile, "AWS shared config profile")
	fs.BoolVar(&c.MFA, "mfa", c.MFA, "prompt for an MFA token when the profile assumes a role")
	fs.StringVar(&c.MFAToken, "mfa-token", c.MFAToken, "MFA token to assume the profile's role with")
	fs.StringVarP(&c.Out, "out", "o", c.Out, "write to a file instead of stdout")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log requests to stderr")
}

// Validate checks for conflicting settings.
func (c Config) Validate() error {
	if c.MFA && c.MFAToken != "" {
		return errors.New("--mfa and --mfa-token cannot be used together")
	}
	return nil
}

// LogLevel returns the level diagnostics are logged at.
func (c Config) LogLevel(getenv func(string) string) string {
	if c.Debug {
		return "debug"
	}
	if lvl := getenv(LogLevelEnv); lvl != "" {
		return lvl
	}
	return logger.DefaultLevel
}

// AWS loads the aws config for c. Credentials and the region come from the
// default aws chain, with the flags taking precedence. If a profile assumes
// a role with an mfa_serial, the token is read from c.MFAToken or prompted
// for on prompt and read from in.
func (c Config) AWS(ctx context.Context, in io.Reader, prompt io.Writer) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}
	if tp := c.TokenProvider(in, prompt); tp != nil {
		opts = append(opts, awsconfig.WithAssumeRoleCredentialOptions(func(o *stscreds.AssumeRoleOptions) {
			o.TokenProvider = tp
		}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	cfg.Region = ResolveRegion(c.Region, cfg.Region)
	return cfg, nil
}

// ResolveRegion picks the region: explicit flag, then the ambient value from
// the aws environment, then DefaultRegion.
func ResolveRegion(flag, ambient string) string {
	switch {
	case flag != "":
		return flag
	case ambient != "":
		return ambient
	}
	return DefaultRegion
}

// TokenProvider returns the MFA token source for assumed roles, or nil when
// MFA is not enabled.
func (c Config) TokenProvider(in io.Reader, prompt io.Writer) func() (string, error) {
	switch {
	case c.MFAToken != "":
		token := c.MFAToken
		return func() (string, error) { return token, nil }
	case c.MFA:
		return func() (string, error) {
			fmt.Fprint(prompt, "MFA token: ")
			line, err := bufio.NewReader(in).ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return "", fmt.Errorf("read mfa token: %w", err)
			}
			token := strings.TrimSpace(line)
			if token == "" {
				return "", errors.New("read mfa token: empty token")
			}
			return token, nil
		}
	}
	return nil
}
