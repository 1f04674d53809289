// Package mcpserver exposes the analysis and rubric entry points as MCP
// tools: analyze_image, get_analysis_by_category and evaluate.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ahrav/go-gaucho/internal/domain"
)

// Backend is the set of entry points the tools call.
type Backend interface {
	AnalyzeImage(ctx context.Context, req domain.AnalyzeRequest) (domain.RecordRef, error)
	GetAnalysisByCategory(ctx context.Context, category string, start, count int) (domain.Page, error)
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error)
}

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server

	backend Backend
	log     *slog.Logger
}

// New creates a server with every tool registered.
func New(backend Backend, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: "gaucho", Version: version}, nil),
		backend:   backend,
		log:       logger.With("component", "mcp"),
	}
	s.registerTools()
	return s
}

// RunStdio serves over stdin/stdout until ctx is done or the client leaves.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return s.MCPServer }, nil)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_image",
		Description: "Analyze an image URL under consensus and store the scored verdict in its category log. Returns where it was stored.",
	}, s.handleAnalyzeImage)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_analysis_by_category",
		Description: "Read a page of stored analyses for a category (steak, veggies, mate, gaucho, futbol, easter_eggs). Unknown categories read easter_eggs.",
	}, s.handleGetAnalysisByCategory)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "evaluate",
		Description: "Score a description of an Argentine experience from 0 to 100 with a short message. Nothing is stored.",
	}, s.handleEvaluate)
}

// --- Tool input/output types ---

type analyzeImageInput struct {
	URL     string `json:"url" jsonschema:"image URL to analyze"`
	Defense string `json:"defense,omitempty" jsonschema:"optional justification that may nudge the score"`
	Caller  string `json:"caller,omitempty" jsonschema:"caller address as 0x-prefixed hex (zero address when omitted)"`
}

type getAnalysisInput struct {
	Category string `json:"category" jsonschema:"category key"`
	Start    int    `json:"start,omitempty" jsonschema:"first index to return (default 0)"`
	Count    int    `json:"count,omitempty" jsonschema:"records to return (default 10)"`
}

// recordOutput is AnalysisRecord with the caller rendered as hex, so the
// inferred output schema matches the JSON the tool returns.
type recordOutput struct {
	ConsensusOutput string `json:"consensus_output"`
	CallerAddress   string `json:"caller_address"`
	Defense         string `json:"defense"`
	URL             string `json:"url"`
}

type pageOutput struct {
	Records       []recordOutput `json:"records"`
	TotalCount    int            `json:"total_count"`
	StartIndex    int            `json:"start_index"`
	ReturnedCount int            `json:"returned_count"`
	HasMore       bool           `json:"has_more"`
}

func newPageOutput(p domain.Page) pageOutput {
	out := pageOutput{
		Records:       make([]recordOutput, 0, len(p.Records)),
		TotalCount:    p.TotalCount,
		StartIndex:    p.StartIndex,
		ReturnedCount: p.ReturnedCount,
		HasMore:       p.HasMore,
	}
	for _, r := range p.Records {
		out.Records = append(out.Records, recordOutput{
			ConsensusOutput: r.ConsensusOutput,
			CallerAddress:   r.CallerAddress.Hex(),
			Defense:         r.Defense,
			URL:             r.URL,
		})
	}
	return out
}

type evaluateInput struct {
	Description  string   `json:"description" jsonschema:"free-text description of the experience"`
	Tags         []string `json:"tags,omitempty" jsonschema:"optional reference categories"`
	ImageQuality *int     `json:"image_quality,omitempty" jsonschema:"optional image quality from 0 to 100"`
}

// --- Tool handlers ---

func (s *Server) handleAnalyzeImage(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeImageInput) (*sdkmcp.CallToolResult, domain.RecordRef, error) {
	var caller domain.Address
	if input.Caller != "" {
		addr, err := domain.ParseAddress(input.Caller)
		if err != nil {
			return nil, domain.RecordRef{}, err
		}
		caller = addr
	}

	ref, err := s.backend.AnalyzeImage(ctx, domain.AnalyzeRequest{Caller: caller, URL: input.URL, Defense: input.Defense})
	if err != nil {
		s.log.WarnContext(ctx, "analyze_image failed", "url", input.URL, "error", err)
		return nil, domain.RecordRef{}, fmt.Errorf("analyze_image: %w", err)
	}
	return nil, ref, nil
}

func (s *Server) handleGetAnalysisByCategory(ctx context.Context, _ *sdkmcp.CallToolRequest, input getAnalysisInput) (*sdkmcp.CallToolResult, pageOutput, error) {
	page, err := s.backend.GetAnalysisByCategory(ctx, input.Category, input.Start, input.Count)
	if err != nil {
		return nil, pageOutput{}, fmt.Errorf("get_analysis_by_category: %w", err)
	}
	return nil, newPageOutput(page), nil
}

func (s *Server) handleEvaluate(ctx context.Context, _ *sdkmcp.CallToolRequest, input evaluateInput) (*sdkmcp.CallToolResult, domain.EvaluationResult, error) {
	res, err := s.backend.Evaluate(ctx, domain.EvaluationRequest{
		Description:  input.Description,
		Tags:         input.Tags,
		ImageQuality: input.ImageQuality,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidRequest) {
			s.log.WarnContext(ctx, "evaluate failed", "error", err)
		}
		return nil, domain.EvaluationResult{}, fmt.Errorf("evaluate: %w", err)
	}
	return nil, res, nil
}
