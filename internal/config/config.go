package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// valid log formats and levels
var (
	validLogFormats = []string{"text", "json"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
)

// DefaultCommentSizeLimit matches the maximum body size of a GitHub issue comment
const DefaultCommentSizeLimit = 65536

type Config struct {
	AppExclude             []string
	ArgoCDCLIPath          string
	ArgoCDExtraCLIArgs     []string
	ArgoCDServerURL        string
	ArgoCDSkipSSLVerify    bool
	ArgoCDToken            string
	ArgoCDUIURL            string
	CommentSizeLimit       int
	DiffConcurrency        int
	GitHubMinimizeOutdated bool
	GitHubRepository       string
	GitHubToken            string
	GitLabBaseURL          string
	GitLabProject          string
	GitLabSkipSSLVerify    bool
	GitLabToken            string
	LogFormat              string
	LogLevel               string
	OnlyChangedApps        bool
	ScrubSecrets           []string
	TargetRevisions        []string
	Timezone               *time.Location
}

// Load creates a new Config instance from environment variables and validates it for the given output mode.
// Offline runs (records file) do not need ArgoCD settings.
func Load(mode string, offline bool) (*Config, error) {

	// Parse ArgoCD configuration
	argoCDServerURL := strings.TrimSuffix(os.Getenv("ADP_ARGOCD_SERVER_URL"), "/")
	argoCDSkipSSL, err := parseBoolEnvOrDefault("ADP_ARGOCD_SKIP_SSL_VERIFY", false)
	if err != nil {
		return nil, err
	}

	// Parse application selection
	onlyChangedApps, err := parseBoolEnvOrDefault("ADP_ONLY_CHANGED_APPS", false)
	if err != nil {
		return nil, err
	}
	diffConcurrency, err := parseIntEnvOrDefault("ADP_DIFF_CONCURRENCY", 4, 1, 32)
	if err != nil {
		return nil, err
	}

	// Parse comment rendering
	commentSizeLimit, err := parseIntEnvOrDefault("ADP_COMMENT_SIZE_LIMIT", DefaultCommentSizeLimit, 1024, 1048576)
	if err != nil {
		return nil, err
	}
	timezoneName := getEnvOrDefault("ADP_TIMEZONE", "UTC")
	timezone, err := time.LoadLocation(timezoneName)
	if err != nil {
		return nil, fmt.Errorf("ADP_TIMEZONE must be a valid IANA timezone, got: %s", timezoneName)
	}

	// Parse Git platform configuration
	gitHubMinimize, err := parseBoolEnvOrDefault("ADP_GITHUB_MINIMIZE_OUTDATED", false)
	if err != nil {
		return nil, err
	}
	gitLabSkipSSL, err := parseBoolEnvOrDefault("ADP_GITLAB_SKIP_SSL_VERIFY", false)
	if err != nil {
		return nil, err
	}

	// Build config struct
	cfg := &Config{
		AppExclude:             parseListEnv("ADP_APP_EXCLUDE"),
		ArgoCDCLIPath:          getEnvOrDefault("ADP_ARGOCD_CLI_PATH", "argocd"),
		ArgoCDExtraCLIArgs:     strings.Fields(os.Getenv("ADP_ARGOCD_EXTRA_CLI_ARGS")),
		ArgoCDServerURL:        argoCDServerURL,
		ArgoCDSkipSSLVerify:    argoCDSkipSSL,
		ArgoCDToken:            os.Getenv("ADP_ARGOCD_TOKEN"),
		ArgoCDUIURL:            strings.TrimSuffix(getEnvOrDefault("ADP_ARGOCD_UI_URL", argoCDServerURL), "/"),
		CommentSizeLimit:       commentSizeLimit,
		DiffConcurrency:        diffConcurrency,
		GitHubMinimizeOutdated: gitHubMinimize,
		GitHubRepository:       getEnvOrDefault("ADP_GITHUB_REPOSITORY", os.Getenv("GITHUB_REPOSITORY")),
		GitHubToken:            os.Getenv("ADP_GITHUB_TOKEN"),
		GitLabBaseURL:          os.Getenv("ADP_GITLAB_BASE_URL"),
		GitLabProject:          os.Getenv("ADP_GITLAB_PROJECT"),
		GitLabSkipSSLVerify:    gitLabSkipSSL,
		GitLabToken:            os.Getenv("ADP_GITLAB_TOKEN"),
		LogFormat:              os.Getenv("ADP_LOG_FORMAT"),
		LogLevel:               os.Getenv("ADP_LOG_LEVEL"),
		OnlyChangedApps:        onlyChangedApps,
		ScrubSecrets:           parseListEnv("ADP_SCRUB_SECRETS"),
		TargetRevisions:        parseListEnv("ADP_TARGET_REVISIONS"),
		Timezone:               timezone,
	}
	if _, set := os.LookupEnv("ADP_TARGET_REVISIONS"); !set {
		cfg.TargetRevisions = []string{"HEAD", "main", "master"}
	}

	// Validate configuration
	if err := validateConfig(cfg, mode, offline); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Secrets returns every configured credential and extra secret that must never appear in a comment
func (c *Config) Secrets() []string {
	secrets := slices.Clone(c.ScrubSecrets)
	for _, token := range []string{c.ArgoCDToken, c.GitHubToken, c.GitLabToken} {
		if token != "" {
			secrets = append(secrets, token)
		}
	}
	return secrets
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// parseListEnv splits a comma-separated environment variable, dropping empty entries
func parseListEnv(key string) []string {
	var values []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}

// parseIntEnvOrDefault parses an integer environment variable with range validation or returns a default value if not set
func parseIntEnvOrDefault(key string, defaultVal, min, max int) (int, error) {
	str, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal, nil
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer, got: %s", key, str)
	}

	if val < min || val > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, val)
	}

	return val, nil
}

// parseBoolEnvOrDefault parses a boolean environment variable or returns a default value if not set
func parseBoolEnvOrDefault(key string, defaultVal bool) (bool, error) {
	str, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal, nil
	}

	val, err := strconv.ParseBool(str)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean, got: %s", key, str)
	}

	return val, nil
}

// validateConfig performs all validation on the loaded configuration
func validateConfig(cfg *Config, mode string, offline bool) error {

	// Validate ArgoCD configuration
	if !offline {
		if cfg.ArgoCDServerURL == "" {
			return fmt.Errorf("ADP_ARGOCD_SERVER_URL environment variable is required")
		}
		if cfg.ArgoCDToken == "" {
			return fmt.Errorf("ADP_ARGOCD_TOKEN environment variable is required")
		}
		if len(cfg.TargetRevisions) == 0 {
			return fmt.Errorf("ADP_TARGET_REVISIONS must list at least one revision")
		}
	}

	// Validate Git platform configuration
	switch mode {
	case "github":
		if cfg.GitHubToken == "" {
			return fmt.Errorf("ADP_GITHUB_TOKEN environment variable is required for github mode")
		}
		if owner, repo, ok := strings.Cut(cfg.GitHubRepository, "/"); !ok || owner == "" || repo == "" {
			return fmt.Errorf("ADP_GITHUB_REPOSITORY must be in 'owner/repo' form, got: %q", cfg.GitHubRepository)
		}
	case "gitlab":
		if cfg.GitLabToken == "" {
			return fmt.Errorf("ADP_GITLAB_TOKEN environment variable is required for gitlab mode")
		}
		if cfg.GitLabBaseURL == "" {
			return fmt.Errorf("ADP_GITLAB_BASE_URL environment variable is required for gitlab mode")
		}
		if cfg.GitLabProject == "" {
			return fmt.Errorf("ADP_GITLAB_PROJECT environment variable is required for gitlab mode")
		}
	}
	if cfg.OnlyChangedApps && mode != "github" {
		return fmt.Errorf("ADP_ONLY_CHANGED_APPS is only available in github mode")
	}

	// Validate logging configuration
	if cfg.LogFormat != "" {
		if !slices.Contains(validLogFormats, strings.ToLower(cfg.LogFormat)) {
			return fmt.Errorf("ADP_LOG_FORMAT must be one of: %v; got: %s", validLogFormats, cfg.LogFormat)
		}
	}
	if cfg.LogLevel != "" {
		if !slices.Contains(validLogLevels, strings.ToLower(cfg.LogLevel)) {
			return fmt.Errorf("ADP_LOG_LEVEL must be one of: %v; got: %s", validLogLevels, cfg.LogLevel)
		}
	}

	return nil
}
