package cli

// This file holds the flag set shared by the migration commands and the glue
// that turns flags, environment, config file, and prompts into one Config.

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ismigrate/internal/cluster"
	"ismigrate/internal/config"
)

// configOptions carries the flag values of the run, plan, and transfer
// commands. Non-empty flags overlay whatever the config file and environment
// provided. Passwords never ride on flags; they come from the environment,
// the config file, the auth file, or an interactive prompt.
type configOptions struct {
	configFile    string
	namespaces    []string
	tagMode       string
	estimateSizes bool
	transferMode  string
	outputDir     string
	clusterAPI    string
	clusterUser   string
	clusterToken  string
	sourceHost    string
	destHost      string
	destGroup     string
	repoAPIURL    string
	eventsDSN     string
	authFile      string
	insecure      bool
}

func (o *configOptions) bind(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configFile, "config", "c", "", "Path to config file (YAML)")
	flags.StringSliceVarP(&o.namespaces, "namespace", "n", nil, "Source namespace to migrate (repeatable)")
	flags.StringVarP(&o.tagMode, "tags", "t", "", `Tags per image: "all" or the N most recent`)
	flags.BoolVar(&o.estimateSizes, "estimate-sizes", false, "Estimate transfer sizes from image manifests")
	flags.StringVar(&o.transferMode, "transfer-mode", "", "Transfer mode: registry or docker")
	flags.StringVarP(&o.outputDir, "output-dir", "o", "", "Directory for the work list and outcome logs")
	flags.StringVar(&o.clusterAPI, "cluster-api", "", "Source cluster API URL")
	flags.StringVar(&o.clusterUser, "cluster-user", "", "Source cluster username")
	flags.StringVar(&o.clusterToken, "cluster-token", "", "Pre-issued source cluster bearer token")
	flags.StringVar(&o.sourceHost, "source-registry", "", "Source registry host")
	flags.StringVar(&o.destHost, "dest-registry", "", "Destination registry host")
	flags.StringVar(&o.destGroup, "dest-group", "", "Destination group all images land under")
	flags.StringVar(&o.repoAPIURL, "repo-api", "", "Destination repository API base URL")
	flags.StringVar(&o.eventsDSN, "events-dsn", "", "ClickHouse DSN for migration events")
	flags.StringVar(&o.authFile, "auth-file", "", "YAML file with per-registry credentials")
	flags.BoolVarP(&o.insecure, "insecure", "k", false, "Skip TLS verification for cluster and registries")
}

// completeFunc fills the interactive fields one command actually needs.
type completeFunc func(*config.Config, config.Prompter) error

// completeForTransfer asks for cluster credentials only when the source
// registry password is missing and has to be derived from the cluster token.
func completeForTransfer(cfg *config.Config, p config.Prompter) error {
	if cfg.Source.Password == "" {
		if err := cfg.CompleteCluster(p); err != nil {
			return err
		}
	}
	return cfg.CompleteDestination(p)
}

// load assembles the run configuration with flag > environment > file >
// prompt precedence.
func (o *configOptions) load(logger *zap.Logger, complete completeFunc) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		Error("Failed to load configuration")
		logStructuredError(logger, err, "Failed to load configuration")
		return nil, err
	}
	o.overlay(cfg)
	if err := cfg.ApplyAuthFile(cfg.AuthFile); err != nil {
		Error("Failed to apply auth file")
		logStructuredError(logger, err, "Failed to apply auth file")
		return nil, err
	}
	if err := complete(cfg, config.NewPrompter()); err != nil {
		Error("Configuration is incomplete")
		logStructuredError(logger, err, "Configuration is incomplete")
		return nil, err
	}
	return cfg, nil
}

func (o *configOptions) overlay(cfg *config.Config) {
	if len(o.namespaces) > 0 {
		cfg.Namespaces = o.namespaces
	}
	if o.tagMode != "" {
		cfg.TagMode = o.tagMode
	}
	if o.estimateSizes {
		cfg.EstimateSizes = true
	}
	if o.transferMode != "" {
		cfg.TransferMode = o.transferMode
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.clusterAPI != "" {
		cfg.Cluster.API = o.clusterAPI
	}
	if o.clusterUser != "" {
		cfg.Cluster.Username = o.clusterUser
	}
	if o.clusterToken != "" {
		cfg.Cluster.Token = o.clusterToken
	}
	if o.sourceHost != "" {
		cfg.Source.Host = o.sourceHost
	}
	if o.destHost != "" {
		cfg.Destination.Host = o.destHost
	}
	if o.destGroup != "" {
		cfg.Destination.Group = o.destGroup
	}
	if o.repoAPIURL != "" {
		cfg.RepoAPI.URL = o.repoAPIURL
	}
	if o.eventsDSN != "" {
		cfg.EventsDSN = o.eventsDSN
	}
	if o.authFile != "" {
		cfg.AuthFile = o.authFile
	}
	if o.insecure {
		cfg.Cluster.Insecure = true
		cfg.Source.Insecure = true
		cfg.Destination.Insecure = true
	}
}

// requireFields returns the first unmet requirement as a config error.
func requireFields(logger *zap.Logger, checks []fieldCheck) error {
	for _, check := range checks {
		if check.ok {
			continue
		}
		err := newWithSentinel(check.base, check.base.Error())
		Error(check.hint)
		logStructuredError(logger, err, check.hint)
		return err
	}
	return nil
}

type fieldCheck struct {
	ok   bool
	base error
	hint string
}

func planFieldChecks(cfg *config.Config) []fieldCheck {
	return []fieldCheck{
		{len(cfg.Namespaces) > 0, ErrNamespacesRequired, "No namespaces given: use --namespace or the config file"},
		{cfg.Source.Host != "", ErrSourceRegistryRequired, "No source registry given: use --source-registry"},
		{cfg.Destination.Host != "", ErrDestinationRegistryRequired, "No destination registry given: use --dest-registry"},
		{cfg.Destination.Group != "", ErrDestinationGroupRequired, "No destination group given: use --dest-group"},
	}
}

func transferFieldChecks(cfg *config.Config) []fieldCheck {
	return []fieldCheck{
		{cfg.Destination.Host != "", ErrDestinationRegistryRequired, "No destination registry given: use --dest-registry"},
		{cfg.Destination.Group != "", ErrDestinationGroupRequired, "No destination group given: use --dest-group"},
		{cfg.RepoAPI.URL != "", ErrRepositoryAPIRequired, "No repository API given: use --repo-api"},
	}
}

// clusterToken returns the configured bearer token, logging in through the
// OAuth challenging client when only username and password are set. The
// token is cached on the config so a combined run logs in once.
func clusterToken(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	if cfg.Cluster.Token != "" {
		return cfg.Cluster.Token, nil
	}
	stop := DefaultPrinter.SpinnerStart(fmt.Sprintf("Logging into cluster %s", cfg.Cluster.API))
	auth := cluster.NewAuthenticator(cfg.Cluster.Insecure, logger)
	token, err := auth.Token(ctx, cfg.Cluster.API, cfg.Cluster.Username, cfg.Cluster.Password)
	if err != nil {
		stop(false, "Cluster login failed")
		logStructuredError(logger, err, "Cluster login failed")
		return "", err
	}
	stop(true, "Logged into cluster")
	cfg.Cluster.Token = token
	return token, nil
}

// applySourceCredentialConvention fills empty source registry credentials
// with the cluster service account convention: the bearer token works as the
// registry password for the fixed username "serviceaccount".
func applySourceCredentialConvention(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Source.Password != "" {
		return nil
	}
	token, err := clusterToken(ctx, cfg, logger)
	if err != nil {
		return err
	}
	cfg.Source.Username = "serviceaccount"
	cfg.Source.Password = token
	return nil
}
