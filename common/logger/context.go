package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and the pipeline enrich the context once; every log line below picks the
// fields up without passing them explicitly.
type LogFields struct {
	IssueKey   *string // "owner/repo#number"
	Repository *string // "owner/repo"
	DeliveryID *string // X-GitHub-Delivery header
	EventType  *string // X-GitHub-Event header, e.g. "issues"
	RunID      *int64  // Pipeline run ID
	Component  string  // Component name, e.g. "autofix.pipeline"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.IssueKey != nil {
		result.IssueKey = new.IssueKey
	}
	if new.Repository != nil {
		result.Repository = new.Repository
	}
	if new.DeliveryID != nil {
		result.DeliveryID = new.DeliveryID
	}
	if new.EventType != nil {
		result.EventType = new.EventType
	}
	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RunID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
