package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/cvdraft/internal/editor"
	"github.com/starford/cvdraft/internal/mcpserver"
)

// RunMCP serves the editor tools over stdio until the client disconnects.
// Logs must not go to stdout here; pass WithLogOutput(os.Stderr).
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.build()
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(c.session, c.exports).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// ListSaved prints the ids of resumes stored on the resume service, one per line.
func ListSaved(ctx context.Context, out io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.build()
	if err != nil {
		return err
	}
	defer c.Close()

	ids, err := c.session.ListSaved(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(out, id); err != nil {
			return err
		}
	}
	return nil
}

// Fetch downloads a saved resume into the export directory as <id>.json and
// returns the written path.
func Fetch(ctx context.Context, id string, opts ...Option) (string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return "", err
	}
	c, err := app.build()
	if err != nil {
		return "", err
	}
	defer c.Close()

	data, err := c.client.GetResume(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", id, err)
	}
	body, err := editor.Encode(data)
	if err != nil {
		return "", err
	}
	name := id + ".json"
	if err := c.exports.Write(name, body); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	c.logger.Info("resume fetched", slog.String("id", id), slog.String("file", name))
	return name, nil
}
