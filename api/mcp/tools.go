package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/measures/pkg/conversion"
)

var (
	convertToolName    = "convert_measurements"
	convertDescription = "Decode a measurement sequence of lowercase letters and '_' into a list of totals. The conversion is recorded in the audit log and the secure history."

	auditLogToolName    = "audit_log"
	auditLogDescription = "List every recorded conversion with its audit ID and timestamp, newest first."

	secureHistoryToolName    = "secure_history"
	secureHistoryDescription = "List the conversions held in the encrypted secure history, oldest first."
)

// ConvertInput represents the input arguments for the convert tool.
type ConvertInput struct {
	Sequence string `json:"sequence" jsonschema:"the measurement sequence to decode, e.g. abbcc"`
}

// ConvertOutput represents the output of the convert tool.
type ConvertOutput struct {
	Sequence  string `json:"sequence"`
	Processed []int  `json:"processed"`
	AuditID   int64  `json:"audit_id"`
}

// AuditRecord is one audit log row. Timestamps are RFC 3339 in UTC.
type AuditRecord struct {
	ID        int64  `json:"id"`
	Sequence  string `json:"sequence"`
	Processed []int  `json:"processed"`
	Timestamp string `json:"timestamp"`
}

// AuditLogOutput represents the output of the audit log tool.
type AuditLogOutput struct {
	Records []AuditRecord `json:"records"`
	Count   int           `json:"count"`
}

// HistoryEntry is one secure history entry.
type HistoryEntry struct {
	Sequence  string `json:"sequence"`
	Processed []int  `json:"processed"`
}

// SecureHistoryOutput represents the output of the secure history tool.
type SecureHistoryOutput struct {
	Entries []HistoryEntry `json:"entries"`
	Count   int            `json:"count"`
}

type emptyInput struct{}

func (s *Server) handleConvert(ctx context.Context, _ *mcp.CallToolRequest, input ConvertInput) (*mcp.CallToolResult, ConvertOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP convert request", "sequence", input.Sequence)

	// Errors returned from a tool handler reach the client as a result with
	// IsError set, not as a protocol error.
	res, err := s.config.Service.Convert(ctx, input.Sequence)
	if errors.Is(err, conversion.ErrRecord) {
		// The driver error stays in the server log.
		return nil, ConvertOutput{}, conversion.ErrRecord
	}
	if err != nil {
		return nil, ConvertOutput{}, err
	}

	return nil, ConvertOutput{
		Sequence:  res.Sequence,
		Processed: nonNil(res.Processed),
		AuditID:   res.AuditID,
	}, nil
}

func (s *Server) handleAuditLog(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, AuditLogOutput, error) {
	records, err := s.config.Service.AuditLog(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list audit log", "error", err)
		return nil, AuditLogOutput{}, fmt.Errorf("listing audit log: %w", err)
	}

	out := AuditLogOutput{
		Records: make([]AuditRecord, 0, len(records)),
		Count:   len(records),
	}
	for _, r := range records {
		out.Records = append(out.Records, AuditRecord{
			ID:        r.ID,
			Sequence:  r.Sequence,
			Processed: nonNil(r.Processed),
			Timestamp: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	return nil, out, nil
}

func (s *Server) handleSecureHistory(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, SecureHistoryOutput, error) {
	entries := s.config.Service.SecureHistory()

	out := SecureHistoryOutput{
		Entries: make([]HistoryEntry, 0, len(entries)),
		Count:   len(entries),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, HistoryEntry{
			Sequence:  e.Sequence,
			Processed: nonNil(e.Processed),
		})
	}

	return nil, out, nil
}

func nonNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
