package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func tracedRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	return req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))
}

func TestAbortWithErrorLogsTraceContext(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(prev)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = tracedRequest(t, http.MethodPost, "/api/scans")

	AbortWithError(c, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "01000000000000000000000000000000" {
		t.Fatalf("expected trace id on the error log, got %v", fields["trace_id"])
	}
	if fields["span_id"] != "0200000000000000" {
		t.Fatalf("expected span id on the error log, got %v", fields["span_id"])
	}
}

func TestRequestLoggerLogsTraceContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(prev)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger())
	engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, tracedRequest(t, http.MethodGet, "/healthz"))

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "01000000000000000000000000000000" {
		t.Fatalf("expected trace id on the request log, got %v", fields["trace_id"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Fatalf("expected status field, got %v", fields["status"])
	}
}
