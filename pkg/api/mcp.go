package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/contact-normalizer/pkg/ingest"
	"github.com/hazyhaar/contact-normalizer/pkg/kit"
	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
)

// RegisterMCPTools registers the contact tools on the server.
func RegisterMCPTools(srv *server.MCPServer, eps *Endpoints) {
	registerFormatPhone(srv, eps)
	registerFormatName(srv, eps)
	registerNormalizeContacts(srv, eps)
	registerDescribeHeaders(srv, eps)
	registerListPresets(srv, eps)
	registerListFormats(srv, eps)
}

func registerFormatPhone(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("format_phone",
		mcp.WithDescription("Format a Brazilian phone number. Country code 55 and trunk prefix 0 are stripped; numbers with fewer than 10 digits are returned unchanged."),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number in any notation")),
		mcp.WithString("format", mcp.Description(`Layout token, e.g. "+55 (XX) XXXXX-XXXX" (default) or "XXXXXXXXXXX"`)),
	)

	kit.RegisterMCPTool(srv, tool, eps.FormatPhone, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		phone, _ := args["phone"].(string)
		format, _ := args["format"].(string)
		return &kit.MCPDecodeResult{Request: &FormatPhoneRequest{Phone: phone, Format: normalize.PhoneFormat(format)}}, nil
	})
}

func registerFormatName(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("format_name",
		mcp.WithDescription("Apply casing and optional accent removal to a name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name to format")),
		mcp.WithString("case", mcp.Description("none, upper, lower or capitalize (default)")),
		mcp.WithBoolean("remove_accents", mcp.Description("Strip diacritics (José -> Jose)")),
	)

	kit.RegisterMCPTool(srv, tool, eps.FormatName, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		name, _ := args["name"].(string)
		out := &FormatNameRequest{Name: name, Case: normalize.CaseCapitalize}
		if v, _ := args["case"].(string); v != "" {
			if err := out.Case.UnmarshalText([]byte(v)); err != nil {
				return nil, err
			}
		}
		out.RemoveAccents, _ = args["remove_accents"].(bool)
		return &kit.MCPDecodeResult{Request: out}, nil
	})
}

func registerNormalizeContacts(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("normalize_contacts",
		mcp.WithDescription("Parse contacts from CSV text or pasted \"name<TAB>phone\" lines, map them to Google Contacts fields and normalize names and phones."),
		mcp.WithString("content", mcp.Required(), mcp.Description("CSV with a header row, or one contact per line")),
		mcp.WithString("format", mcp.Description("csv or text (default text)")),
		mcp.WithString("preset", mcp.Description("Preset id (default: built-in rules)")),
		mcp.WithString("rules", mcp.Description(`JSON rule overrides, e.g. {"phoneFormat":"XXXXXXXXXXX","removeAccents":true}`)),
	)

	kit.RegisterMCPTool(srv, tool, eps.Import, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		content, _ := args["content"].(string)
		format, _ := args["format"].(string)
		format = strings.ToLower(format)
		switch format {
		case "":
			format = ingest.FormatText
		case ingest.FormatCSV, ingest.FormatText:
		default:
			return nil, fmt.Errorf("format must be csv or text, got %q", format)
		}
		out := &ImportRequest{Format: format, Text: content, Normalize: true}
		out.Preset, _ = args["preset"].(string)
		if v, _ := args["rules"].(string); v != "" {
			if !json.Valid([]byte(v)) {
				return nil, fmt.Errorf("rules is not valid JSON")
			}
			out.Rules = json.RawMessage(v)
		}
		return &kit.MCPDecodeResult{Request: out}, nil
	})
}

func registerDescribeHeaders(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("describe_headers",
		mcp.WithDescription("Show which Google Contacts field each column header maps to, exactly or by heuristic."),
		mcp.WithString("headers", mcp.Required(), mcp.Description("Comma-separated column headers")),
	)

	kit.RegisterMCPTool(srv, tool, eps.DescribeHeaders, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		raw, _ := args["headers"].(string)
		var headers []string
		for _, h := range strings.Split(raw, ",") {
			if h = strings.TrimSpace(h); h != "" {
				headers = append(headers, h)
			}
		}
		return &kit.MCPDecodeResult{Request: &DescribeHeadersRequest{Headers: headers}}, nil
	})
}

func registerListPresets(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("list_presets",
		mcp.WithDescription("List the normalization presets with their rules."),
	)

	kit.RegisterMCPTool(srv, tool, eps.Presets, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerListFormats(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("list_formats",
		mcp.WithDescription("List phone layouts (with an example), case modes, import and export formats and the canonical headers."),
	)

	kit.RegisterMCPTool(srv, tool, eps.Formats, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
