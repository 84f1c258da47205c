package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/optica-core/pkg/config"
	"github.com/jhoicas/optica-core/pkg/logger"
)

const (
	defaultMaxConns    = 25
	slowQueryThreshold = 250 * time.Millisecond
	applicationName    = "optica-core"
)

// NewPool crea el pool de conexiones PostgreSQL, registra el codec decimal y verifica la conexión.
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := buildPoolConfig(cfg, log)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

func buildPoolConfig(cfg config.DBConfig, log *logger.Logger) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = defaultMaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// lock_timeout corto: una fila bloqueada por otro traslado se reporta como conflicto (55P03)
	// en lugar de dejar la petición colgada.
	rt := poolConfig.ConnConfig.RuntimeParams
	if _, ok := rt["application_name"]; !ok {
		rt["application_name"] = applicationName
	}
	if _, ok := rt["lock_timeout"]; !ok {
		rt["lock_timeout"] = "5s"
	}

	if log == nil {
		log = logger.Nop()
	}
	poolConfig.ConnConfig.Tracer = &queryTracer{
		tracer: otel.Tracer("optica-core/postgres"),
		log:    log.Named("postgres"),
		slow:   slowQueryThreshold,
	}

	// NUMERIC -> shopspring/decimal en todas las conexiones del pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return poolConfig, nil
}

// queryTracer abre un span por consulta y registra las consultas lentas o fallidas.
type queryTracer struct {
	tracer trace.Tracer
	log    *logger.Logger
	slow   time.Duration
}

type queryStartKey struct{}

type queryStart struct {
	sql   string
	begin time.Time
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx, _ = t.tracer.Start(ctx, "postgres "+statementVerb(data.SQL),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", data.SQL),
		),
	)
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, begin: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}

	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.begin)
	switch {
	case data.Err != nil && !isNoRows(data.Err):
		t.log.Debug().Err(data.Err).Str("sql", compactSQL(start.sql)).Dur("elapsed", elapsed).Msg("consulta fallida")
	case elapsed >= t.slow:
		t.log.Warn().Str("sql", compactSQL(start.sql)).Dur("elapsed", elapsed).Msg("consulta lenta")
	}
}

// statementVerb devuelve la primera palabra de la sentencia en mayúsculas (SELECT, UPDATE...).
func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "QUERY"
	}
	return strings.ToUpper(fields[0])
}

func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
