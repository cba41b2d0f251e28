// Package zoho implements the Zoho Desk adapters: reading published
// knowledge-base articles and writing curated entries back.
package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"KBSync/internal/domain"
	"KBSync/internal/ports"
	"KBSync/pkg/retry"
)

const pageLimit = 50

// Config carries the OAuth credentials and scope filters for one help desk.
type Config struct {
	TokenURL     string
	ArticlesURL  string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
	OrgID        string
	DepartmentID string
	CategoryID   string
}

// Client talks to the Zoho Desk REST API. The access token obtained from the
// refresh-token exchange is cached for the lifetime of the client.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	policy retry.Policy

	mu    sync.Mutex
	token string
}

var _ ports.ArticleSource = (*Client)(nil)
var _ ports.ArticleWriter = (*Client)(nil)

// NewClient creates a reusable Zoho Desk client. The retry policy applies to
// article creation only; reads fail fast.
func NewClient(cfg Config, policy retry.Policy, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger.With("component", "zoho"),
		policy: policy,
	}
}

// ListArticles pulls every published article of the configured category,
// page by page, then fetches each one in detail and strips the HTML body to
// plain text. Articles from other departments are dropped. A 422 from the
// list endpoint ends pagination instead of failing the run.
func (c *Client) ListArticles(ctx context.Context) ([]domain.SourceArticle, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var collected []domain.SourceArticle
	for page := 1; ; page++ {
		from := (page-1)*pageLimit + 1
		c.logger.Info("fetching articles", "from", from)

		list, err := c.listPage(ctx, token, from)
		if err != nil {
			var statusErr *retry.StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnprocessableEntity {
				c.logger.Warn("list endpoint rejected page offset, stopping pagination", "from", from, "body", statusErr.Body)
				break
			}
			return nil, err
		}
		if len(list) == 0 {
			break
		}

		for _, summary := range list {
			if summary.DepartmentID != c.cfg.DepartmentID {
				continue
			}
			article, err := c.fetchArticle(ctx, token, summary.ID)
			if err != nil {
				return nil, fmt.Errorf("fetch article %s: %w", summary.ID, err)
			}
			article.Answer = ToPlainText(article.Answer)
			collected = append(collected, article)
		}
	}

	c.logger.Info("articles collected", "count", len(collected))
	return collected, nil
}

// articleSummary is the subset of list-endpoint fields the client needs to
// decide whether to fetch the detail document.
type articleSummary struct {
	ID           string `json:"id"`
	DepartmentID string `json:"departmentId"`
}

func (c *Client) listPage(ctx context.Context, token string, from int) ([]articleSummary, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("sortBy", "createdTime")
	params.Set("status", "Published")
	params.Set("categoryId", c.cfg.CategoryID)
	params.Set("from", strconv.Itoa(from))

	var page struct {
		Data []articleSummary `json:"data"`
	}
	if err := c.get(ctx, token, c.cfg.ArticlesURL+"?"+params.Encode(), &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) fetchArticle(ctx context.Context, token, id string) (domain.SourceArticle, error) {
	var article domain.SourceArticle
	if err := c.get(ctx, token, c.cfg.ArticlesURL+"/"+id, &article); err != nil {
		return domain.SourceArticle{}, err
	}
	return article, nil
}

// CreateArticle posts one curated entry to the knowledge base, retrying on
// transient statuses.
func (c *Client) CreateArticle(ctx context.Context, payload domain.ArticlePayload) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	err = c.policy.Do(ctx, func() error {
		return c.post(ctx, token, c.cfg.ArticlesURL, payload, nil)
	})
	if err != nil {
		return fmt.Errorf("create article %q: %w", payload.Title, err)
	}
	return nil
}

// TrashArticles moves the given article IDs to the help-desk trash.
func (c *Client) TrashArticles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	body := map[string][]string{"ids": ids}
	if err := c.post(ctx, token, c.cfg.ArticlesURL+"/moveToTrash", body, nil); err != nil {
		return fmt.Errorf("move articles to trash: %w", err)
	}

	c.logger.Info("articles moved to trash", "count", len(ids))
	return nil
}

// accessToken exchanges the refresh token for an access token, caching the
// result across calls.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("refresh_token", c.cfg.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	c.token = tokenResp.AccessToken
	c.logger.Info("obtained access token")
	return c.token, nil
}

func (c *Client) get(ctx context.Context, token, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	return c.do(req, token, v)
}

func (c *Client) post(ctx context.Context, token, rawURL string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, v)
}

func (c *Client) do(req *http.Request, token string, v any) error {
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	if c.cfg.OrgID != "" {
		req.Header.Set("orgId", c.cfg.OrgID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &retry.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
