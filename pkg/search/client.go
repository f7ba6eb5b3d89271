package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"mlengine/config"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// ErrStatus is wrapped by every error caused by an unexpected HTTP status
// from the search cluster.
var ErrStatus = errors.New("search: unexpected status")

type Client struct {
	rest     *resty.Client
	index    string
	bulkSize int
	limiter  *rate.Limiter
}

func NewClient(cfg config.SearchConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	bulkSize := cfg.BulkSize
	if bulkSize <= 0 {
		bulkSize = DefaultBulkSize
	}

	limit := rate.Inf
	if cfg.BulkRate > 0 {
		limit = rate.Limit(cfg.BulkRate)
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rest.SetTimeout(timeout)
	rest.JSONMarshal = json.Marshal
	rest.JSONUnmarshal = json.Unmarshal

	return &Client{
		rest:     rest,
		index:    index,
		bulkSize: bulkSize,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (c *Client) Index() string {
	return c.index
}

// EnsureIndex creates the index with the fixed mapping when it does not
// exist. With recreate set, an existing index is dropped first.
func (c *Client) EnsureIndex(ctx context.Context, recreate bool) error {
	if recreate {
		resp, err := c.rest.R().SetContext(ctx).Delete("/" + c.index)
		if err != nil {
			return fmt.Errorf("delete index: %w", err)
		}
		if err := checkStatus("delete index", resp, http.StatusOK, http.StatusNotFound); err != nil {
			return err
		}
	}

	resp, err := c.rest.R().SetContext(ctx).Head("/" + c.index)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	if err := checkStatus("check index", resp, http.StatusNotFound); err != nil {
		return err
	}

	resp, err = c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(indexMapping).
		Put("/" + c.index)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return checkStatus("create index", resp, http.StatusOK)
}

// BulkIndex uploads docs in chunks of the configured bulk size, waiting on
// the rate limiter before every chunk. Documents are keyed by their id.
func (c *Client) BulkIndex(ctx context.Context, docs []Document) (BulkResult, error) {
	var total BulkResult

	for start := 0; start < len(docs); start += c.bulkSize {
		end := min(start+c.bulkSize, len(docs))

		if err := c.limiter.Wait(ctx); err != nil {
			return total, err
		}

		res, err := c.bulkChunk(ctx, docs[start:end])
		if err != nil {
			return total, err
		}
		total.Indexed += res.Indexed
		total.Failed += res.Failed
	}

	return total, nil
}

func (c *Client) bulkChunk(ctx context.Context, docs []Document) (BulkResult, error) {
	body, err := encodeBulk(c.index, docs)
	if err != nil {
		return BulkResult{}, err
	}

	var out bulkResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-ndjson").
		SetBody(body).
		SetResult(&out).
		Post("/_bulk")
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk: %w", err)
	}
	if err := checkStatus("bulk", resp, http.StatusOK); err != nil {
		return BulkResult{}, err
	}

	var res BulkResult
	for _, item := range out.Items {
		for _, status := range item {
			if status.Status >= 200 && status.Status < 300 {
				res.Indexed++
			} else {
				res.Failed++
			}
		}
	}
	return res, nil
}

func encodeBulk(index string, docs []Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, doc := range docs {
		action := map[string]any{"index": map[string]string{"_index": index, "_id": doc.ID}}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode bulk document %s: %w", doc.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// Search runs a fuzzy ticker/name search. The query is normalised first.
func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	q = q.Normalize()

	var out searchResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(buildQuery(q)).
		SetResult(&out).
		Post("/" + c.index + "/_search")
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if err := checkStatus("search", resp, http.StatusOK); err != nil {
		return nil, err
	}

	result := &Result{
		Total: out.Hits.Total.Value,
		Hits:  make([]Hit, 0, len(out.Hits.Hits)),
	}
	for _, hit := range out.Hits.Hits {
		result.Hits = append(result.Hits, Hit{ID: hit.ID, Source: hit.Source})
	}
	return result, nil
}

func checkStatus(op string, resp *resty.Response, accepted ...int) error {
	code := resp.StatusCode()
	for _, ok := range accepted {
		if code == ok {
			return nil
		}
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && len(body.Error) > 0 {
		return fmt.Errorf("%w: %s: %d: %s", ErrStatus, op, code, body.Error)
	}
	return fmt.Errorf("%w: %s: %d", ErrStatus, op, code)
}
