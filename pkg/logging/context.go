package logging

import (
	"context"
)

const (
	RecordIDKey    = "record_id"
	BackendKey     = "backend"
	ServiceNameKey = "service_name"
)

func WithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, RecordIDKey, recordID)
}

func WithBackend(ctx context.Context, backend string) context.Context {
	return context.WithValue(ctx, BackendKey, backend)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetRecordID(ctx context.Context) string {
	if recordID, ok := ctx.Value(RecordIDKey).(string); ok {
		return recordID
	}
	return ""
}

func GetBackend(ctx context.Context) string {
	if backend, ok := ctx.Value(BackendKey).(string); ok {
		return backend
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 6)

	if recordID := GetRecordID(ctx); recordID != "" {
		fields = append(fields, "record_id", recordID)
	}

	if backend := GetBackend(ctx); backend != "" {
		fields = append(fields, "backend", backend)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
