package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/common"
)

// DeleteAccount asks the companion backend to delete the authenticated
// account and its server-side data. The request is authorized with the
// current access token; a non-2xx status is a failure, with one attempt to
// pull a human message out of a JSON body and nothing more.
func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	access, _ := c.tokens()
	if access == "" {
		return common.ErrNotAuthenticated
	}

	start := time.Now()
	err := c.deleteAccount(ctx, access)
	observe("delete_account", start, err)
	return err
}

func (c *HTTPClient) deleteAccount(ctx context.Context, access string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.accountURL+"/account", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &body)
		if body.Message != "" {
			return fmt.Errorf("account deletion failed: %s", body.Message)
		}
		return fmt.Errorf("account deletion failed with status %d", resp.StatusCode)
	}
	return nil
}
