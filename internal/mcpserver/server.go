// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the resume editor to LLM agents via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cvdraft/internal/editor"
	"github.com/starford/cvdraft/internal/resume"
	"github.com/starford/cvdraft/internal/storage"
)

const formatURI = "cvdraft://resume-format"

// Server wraps the MCP server with resume editor tools.
type Server struct {
	mcp     *server.MCPServer
	session *editor.Session
	exports storage.Provider
	now     func() time.Time
}

// New creates a new MCP server with all editor tools registered.
func New(session *editor.Session, exports storage.Provider) *Server {
	s := &Server{session: session, exports: exports, now: time.Now}

	s.mcp = server.NewMCPServer(
		"cvdraft",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_resume",
		mcp.WithDescription("Returns the current draft: view, resume record, busy markers, "+
			"missing required fields and the last save receipt."),
	), s.getResume)

	s.mcp.AddTool(mcp.NewTool("get_resume_contract",
		mcp.WithDescription("Returns the resume record format. Read it before editing entries."),
	), s.getResumeContract)

	s.mcp.AddTool(mcp.NewTool("upload_resume",
		mcp.WithDescription("Upload a PDF or DOCX resume (max 10 MB) and open the editor with the seeded record."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data URI of the file")),
		mcp.WithString("filename", mcp.Description("Optional file name")),
	), s.uploadResume)

	s.mcp.AddTool(mcp.NewTool("set_summary",
		mcp.WithDescription("Replace the professional summary."),
		mcp.WithString("summary", mcp.Required(), mcp.Description("New summary text")),
	), s.setSummary)

	s.mcp.AddTool(mcp.NewTool("set_personal_info",
		mcp.WithDescription("Change contact fields. Omitted fields keep their value."),
		mcp.WithString("fullName"),
		mcp.WithString("email"),
		mcp.WithString("phone"),
		mcp.WithString("location"),
		mcp.WithString("linkedin"),
		mcp.WithString("website"),
	), s.setPersonalInfo)

	s.mcp.AddTool(mcp.NewTool("add_entry",
		mcp.WithDescription("Append an empty entry and return it with its id."),
		mcp.WithString("section", mcp.Required(), mcp.Enum("experience", "education", "skills")),
	), s.addEntry)

	s.mcp.AddTool(mcp.NewTool("update_entry",
		mcp.WithDescription("Set one field of an entry. Field names follow the resume contract."),
		mcp.WithString("section", mcp.Required(), mcp.Enum("experience", "education", "skills")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name, e.g. title or proficiency")),
		mcp.WithString("value", mcp.Required(), mcp.Description(`New value; "true"/"false" for current`)),
	), s.updateEntry)

	s.mcp.AddTool(mcp.NewTool("remove_entry",
		mcp.WithDescription("Delete an entry by id."),
		mcp.WithString("section", mcp.Required(), mcp.Enum("experience", "education", "skills")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	), s.removeEntry)

	s.mcp.AddTool(mcp.NewTool("enhance",
		mcp.WithDescription("Ask the AI service to improve a section. Summary and experience "+
			"text is replaced; skills only return suggestions."),
		mcp.WithString("target", mcp.Required(), mcp.Enum("summary", "experience", "skills")),
		mcp.WithString("id", mcp.Description("Experience entry id, required for target experience")),
	), s.enhance)

	s.mcp.AddTool(mcp.NewTool("save_resume",
		mcp.WithDescription("Save the draft to the resume service and return the receipt."),
	), s.saveResume)

	s.mcp.AddTool(mcp.NewTool("export_resume",
		mcp.WithDescription("Write the draft as resume_<date>.json into the export directory."),
	), s.exportResume)

	s.mcp.AddTool(mcp.NewTool("list_saved",
		mcp.WithDescription("List resume ids saved on the resume service."),
	), s.listSaved)

	s.mcp.AddTool(mcp.NewTool("open_saved",
		mcp.WithDescription("Replace the draft with a saved resume."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Saved resume id")),
	), s.openSaved)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Resume Format",
			mcp.WithResourceDescription("JSON layout of the resume record and its editable fields."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getResume(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Snapshot())
}

func (s *Server) getResumeContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ResumeFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ResumeFormatContract,
		},
	}, nil
}

func (s *Server) setSummary(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.session.Summary().Set(text)
	return mcp.NewToolResultText("summary updated"), nil
}

func (s *Server) setPersonalInfo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.session.PersonalInfo().Get()
	fields := map[string]*string{
		"fullName": &info.FullName,
		"email":    &info.Email,
		"phone":    &info.Phone,
		"location": &info.Location,
		"linkedin": &info.LinkedIn,
		"website":  &info.Website,
	}
	changed := 0
	for name, dst := range fields {
		if v, err := req.RequireString(name); err == nil {
			*dst = v
			changed++
		}
	}
	if changed == 0 {
		return mcp.NewToolResultError("no personal info fields given"), nil
	}
	s.session.PersonalInfo().Set(info)
	return jsonResult(info)
}

func (s *Server) addEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch resume.Slice(section) {
	case resume.SliceExperience:
		return jsonResult(s.session.Experience().Add())
	case resume.SliceEducation:
		return jsonResult(s.session.Education().Add())
	case resume.SliceSkills:
		return jsonResult(s.session.Skills().Add())
	}
	return mcp.NewToolResultError(fmt.Sprintf("unknown section %q", section)), nil
}

func (s *Server) updateEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := req.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := fieldValue(req, field)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var entry any
	switch resume.Slice(section) {
	case resume.SliceExperience:
		u, perr := resume.ParseExperienceUpdate(field, raw)
		if perr != nil {
			return mcp.NewToolResultError(perr.Error()), nil
		}
		entry, err = s.session.Experience().Update(id, u)
	case resume.SliceEducation:
		u, perr := resume.ParseEducationUpdate(field, raw)
		if perr != nil {
			return mcp.NewToolResultError(perr.Error()), nil
		}
		entry, err = s.session.Education().Update(id, u)
	case resume.SliceSkills:
		u, perr := resume.ParseSkillUpdate(field, raw)
		if perr != nil {
			return mcp.NewToolResultError(perr.Error()), nil
		}
		entry, err = s.session.Skills().Update(id, u)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown section %q", section)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entry)
}

// fieldValue encodes the "value" argument for the typed update parsers.
// Agents often send booleans as strings, so "current" accepts both.
func fieldValue(req mcp.CallToolRequest, field string) (json.RawMessage, error) {
	v, ok := req.GetArguments()["value"]
	if !ok {
		return nil, fmt.Errorf("required argument %q not found", "value")
	}
	if str, isStr := v.(string); isStr && field == "current" {
		b, err := strconv.ParseBool(strings.TrimSpace(str))
		if err != nil {
			return nil, fmt.Errorf("current must be true or false, got %q", str)
		}
		v = b
	}
	return json.Marshal(v)
}

func (s *Server) removeEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch resume.Slice(section) {
	case resume.SliceExperience:
		err = s.session.Experience().Remove(id)
	case resume.SliceEducation:
		err = s.session.Education().Remove(id)
	case resume.SliceSkills:
		err = s.session.Skills().Remove(id)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown section %q", section)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) enhance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out editor.Outcome
	switch target {
	case "summary":
		out, err = s.session.EnhanceSummary(ctx)
	case "skills":
		out, err = s.session.EnhanceSkills(ctx)
	case "experience":
		id, idErr := req.RequireString("id")
		if idErr != nil {
			return mcp.NewToolResultError("id is required for target experience"), nil
		}
		out, err = s.session.EnhanceExperience(ctx, id)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown target %q", target)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) saveResume(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.session.Save(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r)
}

func (s *Server) exportResume(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := s.session.Export(s.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.exports.Write(f.Name, f.Body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write export: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("exported: %s", f.Name)), nil
}

func (s *Server) listSaved(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.session.ListSaved(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("no saved resumes"), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) openSaved(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.session.Load(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("opened: %s", id)), nil
}
