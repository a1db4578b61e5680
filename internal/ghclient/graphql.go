package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spiffcs/prscore/internal/constants"
	"github.com/spiffcs/prscore/internal/log"
	"github.com/spiffcs/prscore/internal/prref"
)

// graphqlRequest represents a GraphQL request payload.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// reviewThreadsData is the data payload of the review threads query.
type reviewThreadsData struct {
	Repository *struct {
		PullRequest *struct {
			ReviewThreads *struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []struct {
					IsResolved bool `json:"isResolved"`
				} `json:"nodes"`
			} `json:"reviewThreads"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

// threadPage is one page of review thread resolutions.
type threadPage struct {
	resolved    []bool
	hasNextPage bool
	endCursor   string
}

// ReviewThreads fetches the resolved state of every review thread, following
// the cursor until the last page.
func (c *Client) ReviewThreads(ctx context.Context, ref prref.Ref) ([]bool, error) {
	op := fmt.Sprintf("query review threads of %s", ref)

	var (
		threads []bool
		cursor  string
	)
	for page := 1; ; page++ {
		vars := map[string]any{
			"owner":  ref.Owner,
			"repo":   ref.Repo,
			"number": ref.Number,
			"first":  constants.ThreadPageSize,
		}
		if cursor != "" {
			vars["cursor"] = cursor
		}

		data, err := c.executeGraphQL(ctx, reviewThreadsQuery, vars)
		if err != nil {
			return nil, wrapFetch(op, err)
		}

		p, err := parseReviewThreads(data)
		if err != nil {
			return nil, wrapFetch(op, err)
		}
		threads = append(threads, p.resolved...)

		log.Trace("review threads page", "ref", ref.String(), "page", page, "threads", len(p.resolved))

		if !p.hasNextPage {
			break
		}
		if p.endCursor == "" || p.endCursor == cursor {
			return nil, &UpstreamFetchError{Op: op, Err: fmt.Errorf("malformed pagination: next page without a new cursor")}
		}
		cursor = p.endCursor
	}

	return threads, nil
}

// parseReviewThreads decodes one page of the review threads query.
func parseReviewThreads(data json.RawMessage) (*threadPage, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("malformed response: no data")
	}

	var d reviewThreadsData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse review threads: %w", err)
	}
	if d.Repository == nil {
		return nil, fmt.Errorf("malformed response: repository not found")
	}
	if d.Repository.PullRequest == nil {
		return nil, fmt.Errorf("malformed response: pull request not found")
	}
	rt := d.Repository.PullRequest.ReviewThreads
	if rt == nil {
		return nil, fmt.Errorf("malformed response: no reviewThreads")
	}

	p := &threadPage{
		resolved:    make([]bool, 0, len(rt.Nodes)),
		hasNextPage: rt.PageInfo.HasNextPage,
		endCursor:   rt.PageInfo.EndCursor,
	}
	for _, n := range rt.Nodes {
		p.resolved = append(p.resolved, n.IsResolved)
	}
	return p, nil
}

// executeGraphQL executes a GraphQL query against GitHub's API. Any error
// entry in the response fails the call.
func (c *Client) executeGraphQL(ctx context.Context, query string, vars map[string]any) (json.RawMessage, error) {
	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GraphQL response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			log.Debug("GraphQL error", "message", e.Message, "type", e.Type)
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))
	}

	return gqlResp.Data, nil
}
