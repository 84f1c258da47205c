package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jhoicas/optica-core/pkg/config"
	"github.com/jhoicas/optica-core/pkg/logger"
)

func TestBuildPoolConfig(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "x", DBName: "optica", SSLMode: "disable"}

	pc, err := buildPoolConfig(cfg, nil)
	require.NoError(t, err)
	assert.EqualValues(t, defaultMaxConns, pc.MaxConns)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "5s", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.NotNil(t, pc.ConnConfig.Tracer)
	assert.NotNil(t, pc.AfterConnect)

	cfg.MaxConns = 7
	cfg.DatabaseURL = "postgres://app:x@db:5432/optica?sslmode=disable&lock_timeout=1s"
	pc, err = buildPoolConfig(cfg, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pc.MaxConns)
	assert.Equal(t, "1s", pc.ConnConfig.RuntimeParams["lock_timeout"])

	cfg.DatabaseURL = "postgres://app:x@db:puerto/optica"
	_, err = buildPoolConfig(cfg, nil)
	assert.Error(t, err)
}

func TestQueryTracer_SpanYConsultaLenta(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	var buf bytes.Buffer
	qt := &queryTracer{tracer: tp.Tracer("test"), log: logger.NewWithWriter(&buf, "debug"), slow: 0}

	ctx := qt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "select *\n  from transfers"})
	qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	ctx = qt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "update inventory_records"})
	qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "postgres SELECT", spans[0].Name)
	assert.Equal(t, "postgres UPDATE", spans[1].Name)
	assert.Contains(t, buf.String(), "consulta lenta")
	assert.Contains(t, buf.String(), "select * from transfers")
	assert.Contains(t, buf.String(), "consulta fallida")
}

func TestStatementVerb(t *testing.T) {
	assert.Equal(t, "INSERT", statementVerb("  insert into x"))
	assert.Equal(t, "QUERY", statementVerb(""))
}
