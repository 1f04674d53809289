package mcpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/mcpserver"
)

type fakeBackend struct {
	analyzed  []domain.AnalyzeRequest
	evaluated []domain.EvaluationRequest
	page      domain.Page
	err       error
}

func (f *fakeBackend) AnalyzeImage(_ context.Context, req domain.AnalyzeRequest) (domain.RecordRef, error) {
	f.analyzed = append(f.analyzed, req)
	if f.err != nil {
		return domain.RecordRef{}, f.err
	}
	return domain.RecordRef{Category: domain.CategoryFutbol, Index: 2}, nil
}

func (f *fakeBackend) GetAnalysisByCategory(context.Context, string, int, int) (domain.Page, error) {
	return f.page, f.err
}

func (f *fakeBackend) Evaluate(_ context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	f.evaluated = append(f.evaluated, req)
	if f.err != nil {
		return domain.EvaluationResult{}, f.err
	}
	return domain.EvaluationResult{Score: 77, Message: "Golazo"}, nil
}

func connect(t *testing.T, backend mcpserver.Backend) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	srv := mcpserver.New(backend, "test", nil)
	t1, t2 := sdkmcp.NewInMemoryTransports()
	_, err := srv.MCPServer.Connect(ctx, t1, nil)
	require.NoError(t, err)
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func call(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in tool result")
	return ""
}

func TestToolDiscovery(t *testing.T) {
	session := connect(t, &fakeBackend{})
	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_image", "get_analysis_by_category", "evaluate"}, names)
}

func TestAnalyzeImage(t *testing.T) {
	backend := &fakeBackend{}
	session := connect(t, backend)

	res := call(t, session, "analyze_image", map[string]any{
		"url":     "http://example.com/gol.jpg",
		"defense": "Maradona vibes",
		"caller":  "0x00000000000000000000000000000000000000cc",
	})
	require.False(t, res.IsError, text(t, res))

	var ref domain.RecordRef
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &ref))
	assert.Equal(t, domain.RecordRef{Category: domain.CategoryFutbol, Index: 2}, ref)
	require.Len(t, backend.analyzed, 1)
	assert.Equal(t, "Maradona vibes", backend.analyzed[0].Defense)
	assert.Equal(t, "0x00000000000000000000000000000000000000cc", backend.analyzed[0].Caller.Hex())
}

func TestAnalyzeImage_Errors(t *testing.T) {
	backend := &fakeBackend{err: &consensus.NoConsensusError{Policy: consensus.KindNonComparative, Rounds: 3}}
	session := connect(t, backend)

	res := call(t, session, "analyze_image", map[string]any{"url": "http://example.com/x.jpg"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "consensus")

	res = call(t, session, "analyze_image", map[string]any{"url": "http://example.com/x.jpg", "caller": "0xnothex"})
	assert.True(t, res.IsError)
	assert.Len(t, backend.analyzed, 1, "bad caller never reaches the backend")
}

func TestGetAnalysisByCategory(t *testing.T) {
	caller, err := domain.ParseAddress("0x00000000000000000000000000000000000000dd")
	require.NoError(t, err)
	records := []domain.AnalysisRecord{domain.NewAnalysisRecord(`{"category":"mate","score":900}`, caller, "", "http://example.com/mate.jpg")}
	session := connect(t, &fakeBackend{page: domain.NewPage(records, 3, 0, 1)})

	res := call(t, session, "get_analysis_by_category", map[string]any{"category": "mate", "count": 1})
	require.False(t, res.IsError, text(t, res))

	var page domain.Page
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &page))
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, page.HasMore)
	require.Len(t, page.Records, 1)
	assert.Equal(t, records[0], page.Records[0])
}

func TestEvaluate(t *testing.T) {
	backend := &fakeBackend{}
	session := connect(t, backend)

	res := call(t, session, "evaluate", map[string]any{
		"description":   "Superclásico at La Bombonera",
		"tags":          []string{"sports"},
		"image_quality": 35,
	})
	require.False(t, res.IsError, text(t, res))

	var got domain.EvaluationResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, domain.EvaluationResult{Score: 77, Message: "Golazo"}, got)
	require.Len(t, backend.evaluated, 1)
	require.NotNil(t, backend.evaluated[0].ImageQuality)
	assert.Equal(t, 35, *backend.evaluated[0].ImageQuality)
}

func TestEvaluate_Error(t *testing.T) {
	session := connect(t, &fakeBackend{err: errors.New("score out of range")})
	res := call(t, session, "evaluate", map[string]any{"description": "x"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "out of range")
}
