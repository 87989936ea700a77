// Package update checks the project's GitHub releases for a newer tag.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

const defaultEndpoint = "https://api.github.com/repos/cearley/zsh-llm-suggestions/releases/latest"

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type Result struct {
	Current string
	Latest  string
	URL     string
	Newer   bool
}

type Checker struct {
	Endpoint string
	Client   *http.Client
}

func NewChecker() *Checker {
	return &Checker{
		Endpoint: defaultEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Check fetches the latest release tag and compares it against the running
// version. Tags are compared as semver with any leading "v" dropped.
func (c *Checker) Check(ctx context.Context, current string) (Result, error) {
	release, err := c.latestRelease(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{Current: current, Latest: release.TagName, URL: release.HTMLURL}

	currentVersion, err := goversion.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return result, fmt.Errorf("could not parse current version %q: %w", current, err)
	}
	latestVersion, err := goversion.NewVersion(strings.TrimPrefix(release.TagName, "v"))
	if err != nil {
		return result, fmt.Errorf("could not parse release tag %q: %w", release.TagName, err)
	}

	result.Newer = latestVersion.GreaterThan(currentVersion)
	return result, nil
}

func (c *Checker) latestRelease(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("release check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Release{}, fmt.Errorf("release check failed: server returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Release{}, fmt.Errorf("release check failed: %w", err)
	}
	if strings.TrimSpace(release.TagName) == "" {
		return Release{}, fmt.Errorf("release check failed: no tag in response")
	}
	return release, nil
}
