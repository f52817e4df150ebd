package amboss_test

import (
	"context"
	"io"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"github.com/wallje/karina/internal/amboss"
	"github.com/wallje/karina/internal/testhelpers"
)

func TestClient_FetchWithoutEndpoint(t *testing.T) {
	client := amboss.NewClient("", "", testhelpers.NewLogger(io.Discard))

	_, err := client.Fetch(context.Background(), "Appendizitis")
	require.ErrorContains(t, err, "not configured")
}

func TestJoinTextContent(t *testing.T) {
	tests := []struct {
		name    string
		content []mcp.Content
		want    string
	}{
		{
			name: "joins text parts",
			content: []mcp.Content{
				&mcp.TextContent{Text: "Erster Abschnitt."},
				&mcp.TextContent{Text: "  Zweiter Abschnitt.\n"},
			},
			want: "Erster Abschnitt.\n\nZweiter Abschnitt.",
		},
		{
			name: "skips blank parts",
			content: []mcp.Content{
				&mcp.TextContent{Text: "   "},
				&mcp.TextContent{Text: "Abschnitt."},
			},
			want: "Abschnitt.",
		},
		{
			name: "empty result",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, amboss.JoinTextContent(tt.content))
		})
	}
}
