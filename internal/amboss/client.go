// Package amboss fetches article excerpts from the AMBOSS knowledge base over
// its MCP endpoint.
package amboss

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/wallje/karina/internal/errors"
)

const (
	searchTool   = "search_article_sections"
	fetchTimeout = 30 * time.Second
)

// Client talks to the AMBOSS MCP server. A fresh session is opened per fetch;
// fetches are rare (at most one per case start) so keeping a connection open
// is not worth the reconnect handling.
type Client struct {
	endpoint string
	client   *mcp.Client
	http     *http.Client
	logger   *slog.Logger
}

// NewClient returns a client for the given endpoint. The token is sent as a
// bearer token on every request. An empty endpoint or token yields a client
// whose fetches fail fast, which the retrieval policy degrades gracefully.
func NewClient(endpoint string, token string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client: mcp.NewClient(&mcp.Implementation{
			Name:    "karina",
			Version: "1.0.0",
		}, nil),
		http: &http.Client{
			Transport: bearerTransport{token: token, base: http.DefaultTransport},
		},
		logger: logger.With("source", "amboss.Client"),
	}
}

// Fetch searches AMBOSS article sections for the query and returns the joined
// section texts in German.
func (c *Client) Fetch(ctx context.Context, query string) (string, error) {
	if c.endpoint == "" {
		return "", errors.New("amboss endpoint not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	session, err := c.client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   c.endpoint,
		HTTPClient: c.http,
	}, nil)
	if err != nil {
		return "", errors.Wrap(err, "connect to amboss", slog.String("endpoint", c.endpoint))
	}
	defer func() {
		if err := session.Close(); err != nil {
			c.logger.Warn("closing amboss session", errors.SlogError(err))
		}
	}()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: searchTool,
		Arguments: map[string]any{
			"query":    query,
			"language": "de",
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "search article sections", slog.String("query", query))
	}
	if result.IsError {
		return "", errors.New("amboss tool returned an error", slog.String("query", query))
	}

	text := JoinTextContent(result.Content)
	if text == "" {
		return "", errors.New("amboss returned no text", slog.String("query", query))
	}
	return text, nil
}

// JoinTextContent concatenates the text parts of a tool result, separated by
// blank lines. Non-text content is ignored.
func JoinTextContent(content []mcp.Content) string {
	var parts []string
	for _, item := range content {
		if text, ok := item.(*mcp.TextContent); ok && strings.TrimSpace(text.Text) != "" {
			parts = append(parts, strings.TrimSpace(text.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}
