// Package mcpadapter exposes the insight operations as MCP tools over
// stdio, so agent hosts can trigger analysis and query the project
// assistant without the HTTP surface.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkrashin/document-insight/internal/core/ports"
)

type Server struct {
	mcpServer *server.MCPServer
}

func NewServer(analyzer ports.AnalysisService, chat ports.ChatService, docs ports.DocumentReader) *Server {
	s := server.NewMCPServer("document-insight", "1.0.0")

	analyzeTool := mcp.NewTool("analyze_document",
		mcp.WithDescription("Run (or reuse) the analysis pipeline for a document and return the structured result."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("ID of the uploaded document.")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Caller identity used for project authorization.")),
	)
	s.AddTool(analyzeTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		documentID, err := req.RequireString("document_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, reused, err := analyzer.RequestAnalysis(ctx, documentID, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		payload, err := json.Marshal(map[string]any{"result": result, "reused": reused})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	chatTool := mcp.NewTool("project_chat",
		mcp.WithDescription("Ask the project assistant a question grounded in the project's analyzed documents."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("ID of the project to query.")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Caller identity used for project authorization.")),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question to answer from project context.")),
	)
	s.AddTool(chatTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := req.RequireString("project_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		answer, err := chat.Ask(ctx, projectID, userID, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
		}
		return mcp.NewToolResultText(answer.Answer), nil
	})

	statusTool := mcp.NewTool("document_status",
		mcp.WithDescription("Read a document's processing status and metadata."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("ID of the document.")),
	)
	s.AddTool(statusTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		documentID, err := req.RequireString("document_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		doc, err := docs.GetByID(ctx, documentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode document: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	return &Server{mcpServer: s}
}

// ServeStdio blocks serving MCP over stdin/stdout until the stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
