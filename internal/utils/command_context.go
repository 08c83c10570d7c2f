package utils

import "context"

const catalogPathContextKeyConstant = commandContextKey("catalogPath")

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithCatalogPath attaches the catalog path selected by --config.
func (accessor CommandContextAccessor) WithCatalogPath(parentContext context.Context, catalogPath string) context.Context {
	return withStringValue(parentContext, catalogPathContextKeyConstant, catalogPath)
}

// CatalogPath extracts the catalog path from the provided context.
func (accessor CommandContextAccessor) CatalogPath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, catalogPathContextKeyConstant)
}

func withStringValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	if !available {
		return "", false
	}
	return value, true
}
