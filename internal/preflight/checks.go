package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"asrprep/internal/deps"
)

const hubCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDir(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDir verifies that the directory exists and can be listed.
func CheckReadableDir(name, path string) Result {
	return checkDir(name, path, unix.R_OK|unix.X_OK, "readable")
}

// CheckParentAccess verifies that a file can be created at path.
func CheckParentAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	parent := checkDir(name, filepath.Dir(path), unix.R_OK|unix.W_OK|unix.X_OK, "")
	if !parent.Passed {
		return parent
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
}

func checkDir(name, path string, mode uint32, okDetail string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// FromStatus converts a binary lookup into a check result.
func FromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	switch {
	case status.Available:
		result.Detail = status.Path
	case status.Optional:
		result.Detail = status.Detail + " (optional)"
	default:
		result.Detail = status.Detail
	}
	return result
}

// CheckHub verifies that the dataset is visible on the hub with the token.
func CheckHub(ctx context.Context, client *http.Client, baseURL, dataset, token string) Result {
	const name = "Corpus hub"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	dataset = strings.Trim(strings.TrimSpace(dataset), "/")
	if dataset == "" {
		return Result{Name: name, Detail: "missing dataset"}
	}
	endpoint, err := url.JoinPath(base, "api", "datasets", dataset)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, hubCheckTimeout)
	defer cancel()
	if client == nil {
		client = &http.Client{Timeout: hubCheckTimeout}
	}

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeHubError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", dataset)}
	case http.StatusUnauthorized, http.StatusForbidden:
		if token == "" {
			return Result{Name: name, Detail: "auth required (set fleurs.hf_token or HF_TOKEN)"}
		}
		return Result{Name: name, Detail: "auth failed (invalid token)"}
	case http.StatusNotFound:
		return Result{Name: name, Detail: fmt.Sprintf("dataset %s not found", dataset)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

func summarizeHubError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (hub unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (hub unreachable)"
	}
	return fmt.Sprintf("unreachable (%v)", err)
}
