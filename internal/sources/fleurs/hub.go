package fleurs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"asrprep/internal/services"
)

// hubClient fetches dataset files from a Hugging Face hub.
type hubClient struct {
	baseURL  string
	dataset  string
	revision string
	token    string
	http     *http.Client
}

func (c *hubClient) fileURL(path string) string {
	return fmt.Sprintf("%s/datasets/%s/resolve/%s/%s",
		c.baseURL, c.dataset, url.PathEscape(c.revision), strings.TrimLeft(path, "/"))
}

// open issues a GET for a repository file and returns the response body. The
// caller closes it.
func (c *hubClient) open(ctx context.Context, path string) (io.ReadCloser, error) {
	target := c.fileURL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fleurs", "build request", target, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "asrprep")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "fleurs", "download", target, err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "fleurs", "download", target, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := fmt.Sprintf("%s: status %d %s", target, resp.StatusCode, strings.TrimSpace(string(snippet)))
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "fleurs", "download", message, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, services.Wrap(services.ErrConfiguration, "fleurs", "download", message+" (check HF_TOKEN)", nil)
	default:
		return nil, services.Wrap(services.ErrExternalTool, "fleurs", "download", message, nil)
	}
}
