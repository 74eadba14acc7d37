// mcpgate-echo is a small stdio tool server for trying out the
// gateway end to end. It speaks MCP over stdin/stdout and exits when
// its stdin closes, which is exactly the behavior the gateway expects
// from a well-behaved child.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultTokenVar = "USER_ACCESS_TOKEN"

func main() {
	mcpServer := server.NewMCPServer(
		"mcpgate-echo",
		"1.0.0",
		server.WithLogging(),
	)

	mcpServer.AddTool(mcp.NewTool("echo",
		mcp.WithDescription("Echo a message back"),
		mcp.WithString("message",
			mcp.Description("Message to echo"),
			mcp.Required(),
		),
	), handleEcho)

	mcpServer.AddTool(mcp.NewTool("whoami",
		mcp.WithDescription("Report which access token this process was started with"),
	), handleWhoami)

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleEcho(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	message, ok := args["message"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid or missing message argument")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
	}, nil
}

// handleWhoami reports token presence without ever revealing the
// token itself, so the per-session isolation can be verified safely.
func handleWhoami(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tokenVar := os.Getenv("MCPGATE_TOKEN_VAR")
	if tokenVar == "" {
		tokenVar = defaultTokenVar
	}

	var text string
	if token, ok := os.LookupEnv(tokenVar); ok {
		text = fmt.Sprintf("pid %d, %s set (%d chars)", os.Getpid(), tokenVar, len(token))
	} else {
		text = fmt.Sprintf("pid %d, %s not set", os.Getpid(), tokenVar)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}, nil
}
