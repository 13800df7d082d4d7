// Package dhis2 pushes export batches to the DHIS2 dataValueSets
// endpoint. Pushes are single-attempt with a fixed timeout; retry
// policy belongs to the operator, not the client.
package dhis2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openclinic-tools/dhisync/internal/model"
)

const pushTimeout = 20 * time.Second

// ImportCount is the server-side tally of what an import changed.
type ImportCount struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Ignored  int `json:"ignored"`
	Deleted  int `json:"deleted"`
}

// Changed is the number of records the import actually wrote.
func (c ImportCount) Changed() int {
	return c.Imported + c.Updated
}

type importResponse struct {
	Response struct {
		ImportCount ImportCount `json:"importCount"`
	} `json:"response"`
}

// PushResult reports the outcome of a push. Warning is set when the
// server accepted the request but changed nothing, which usually
// means the same period was already synced.
type PushResult struct {
	Changed int
	Warning bool
}

// Client posts to one DHIS2 instance with basic auth.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// New returns a Client for the given API base URL, e.g.
// https://dhis.example.org/api.
func New(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: pushTimeout},
	}
}

// Push submits a batch with CREATE_AND_UPDATE strategy. Transport
// failures, auth failures, and malformed responses surface as
// SyncError; a zero-change import is a successful call with Warning
// set, left to the caller to report.
func (c *Client) Push(ctx context.Context, batch *model.ExportBatch) (*PushResult, error) {
	if batch.Empty() {
		return nil, &model.SyncError{Message: "refusing to push an empty batch"}
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, &model.SyncError{Message: fmt.Sprintf("encoding batch: %v", err)}
	}

	url := c.baseURL + "/dataValueSets?importStrategy=CREATE_AND_UPDATE&dryRun=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &model.SyncError{Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &model.SyncError{Message: fmt.Sprintf("posting to DHIS2: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &model.SyncError{Message: fmt.Sprintf("DHIS2 returned status %d", resp.StatusCode)}
	}

	var parsed importResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &model.SyncError{Message: fmt.Sprintf("decoding DHIS2 response: %v", err)}
	}

	changed := parsed.Response.ImportCount.Changed()
	return &PushResult{Changed: changed, Warning: changed == 0}, nil
}
