package registry

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// notFoundMessage is the only body the repository API answers with when a
// repository is missing. Any other response, an error body included, means
// the repository is treated as existing so a transfer is never blocked by a
// flaky lookup.
const notFoundMessage = "404 Repository Not Found"

const (
	repoKind       = "image"
	repoVisibility = "private"
)

// RepoAPI provisions repositories on the destination registry through its
// management API. Created repositories always land under the configured
// group with fixed visibility.
type RepoAPI struct {
	base   string
	token  string
	group  string
	http   *http.Client
	logger *zap.Logger
}

// NewRepoAPI returns a provisioning client for the API at base.
func NewRepoAPI(base, token, group string, insecure bool, logger *zap.Logger) *RepoAPI {
	transport := http.DefaultTransport
	if insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- opt-in for registries with self-signed certificates.
		}
	}
	return &RepoAPI{
		base:   base,
		token:  token,
		group:  group,
		http:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		logger: logger,
	}
}

// Exists reports whether a repository path is already provisioned. Only the
// literal not-found message counts as missing.
func (a *RepoAPI) Exists(ctx context.Context, repoPath string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.base+"/repositories/"+url.PathEscape(repoPath), nil)
	if err != nil {
		return false, wrapProvisionError(ErrRepositoryLookup, err,
			"failed to build repository lookup",
			map[string]any{"repository": repoPath})
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.http.Do(req)
	if err != nil {
		return false, wrapProvisionError(ErrRepositoryLookup, err,
			"repository lookup failed",
			map[string]any{"repository": repoPath})
	}
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return true, nil
	}
	return body.Message != notFoundMessage, nil
}

// Create provisions one repository under the configured group.
func (a *RepoAPI) Create(ctx context.Context, repoPath string) error {
	payload, err := json.Marshal(map[string]string{
		"path":       repoPath,
		"namespace":  a.group,
		"kind":       repoKind,
		"visibility": repoVisibility,
	})
	if err != nil {
		return wrapProvisionError(ErrRepositoryCreate, err,
			"failed to encode repository request",
			map[string]any{"repository": repoPath})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.base+"/repositories", bytes.NewReader(payload))
	if err != nil {
		return wrapProvisionError(ErrRepositoryCreate, err,
			"failed to build repository request",
			map[string]any{"repository": repoPath})
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return wrapProvisionError(ErrRepositoryCreate, err,
			"repository creation failed",
			map[string]any{"repository": repoPath})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return provisionError(ErrRepositoryCreate,
			"repository API rejected the creation",
			map[string]any{"repository": repoPath, "status": resp.StatusCode})
	}
	a.logger.Info("Created destination repository", zap.String("repository", repoPath))
	return nil
}

// Ensure checks for the repository and creates it when missing. It runs once
// per pair, with no caching across pairs.
func (a *RepoAPI) Ensure(ctx context.Context, repoPath string) error {
	exists, err := a.Exists(ctx, repoPath)
	if err != nil {
		return err
	}
	if exists {
		a.logger.Debug("Repository already exists", zap.String("repository", repoPath))
		return nil
	}
	return a.Create(ctx, repoPath)
}
