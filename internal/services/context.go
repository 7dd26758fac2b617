package services

import "context"

type contextKey string

const (
	jobIDKey    contextKey = "job_id"
	itemPathKey contextKey = "item_path"
	itemIdxKey  contextKey = "item_index"
	stageKey    contextKey = "stage"
)

// WithJobID annotates context with the batch job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the batch job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithItem annotates context with the 1-based item index and its source path.
func WithItem(ctx context.Context, index int, path string) context.Context {
	ctx = context.WithValue(ctx, itemIdxKey, index)
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, itemPathKey, path)
}

// ItemFromContext returns the item index and source path if present.
func ItemFromContext(ctx context.Context) (int, string, bool) {
	idx, ok := ctx.Value(itemIdxKey).(int)
	if !ok {
		return 0, "", false
	}
	path, _ := ctx.Value(itemPathKey).(string)
	return idx, path, true
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
