// Package envfmt reads parameters from a path in AWS Systems Manager
// Parameter Store and renders them as environment variables.
//
// # Reading
//
// ParamStore lists every parameter below a path, following pagination and
// decrypting SecureString values:
//
//	store, err := envfmt.NewParamStore(envfmt.WithConfig(cfg))
//	params, err := store.List(ctx, "/app/prod")
//
// The aws config decides region and credentials. Without WithConfig or
// WithClient the default aws config chain is used.
//
// # Names
//
// Parameter names are turned into identifiers relative to the path they were
// listed under. Given the following structure in SSM:
//
//	/
//	  /app
//	    /prod
//	      /db
//	        /host
//	        /pass
//	      /api-key
//
// Normalizing with the prefix /app/prod/ gives DB_HOST, DB_PASS and API_KEY.
// NormalizeAll does this for a whole listing and sorts the result so output
// is stable between runs.
//
// # Formats
//
// DotEnv renders one KEY=value line per parameter:
//
//	API_KEY=abc123
//	DB_HOST=localhost
//	DB_PASS="p@ss word"
//
// PhpFpm renders a fragment for a php-fpm pool configuration:
//
//	env[API_KEY] = abc123
//	env[DB_HOST] = localhost
//	env[DB_PASS] = "p@ss word"
//
// Values are quoted only when needed. See QuoteDotEnv and QuotePhpFpm for
// the exact rules.
//
// https://docs.aws.amazon.com/systems-manager/latest/userguide/systems-manager-parameter-store.html
package envfmt
