package services

import "context"

type contextKey string

const (
	submissionIDKey contextKey = "submission_id"
	kindKey         contextKey = "kind"
	actorKey        contextKey = "actor"
	requestIDKey    contextKey = "request_id"
)

// WithSubmissionID annotates context with the local submission identifier.
func WithSubmissionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, submissionIDKey, id)
}

// SubmissionIDFromContext extracts the submission identifier if present.
func SubmissionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(submissionIDKey).(string)
	return v, ok && v != ""
}

// WithKind annotates context with the submission kind.
func WithKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, kindKey, kind)
}

// KindFromContext extracts the submission kind if present.
func KindFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(kindKey).(string)
	return v, ok && v != ""
}

// WithActor annotates context with the authenticated principal identifier.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the principal identifier if present.
func ActorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(actorKey).(string)
	return v, ok && v != ""
}

// WithRequestID annotates context with a correlation identifier for one
// remote call.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok && v != ""
}
