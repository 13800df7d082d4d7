// Package openmrs executes read-only queries against the OpenMRS
// MySQL database. Connections are pooled by database/sql but every
// call runs with its own context deadline and releases its rows on
// all exit paths.
package openmrs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/openclinic-tools/dhisync/internal/config"
	"github.com/openclinic-tools/dhisync/internal/model"
)

const queryTimeout = 30 * time.Second

// Executor runs validated SELECT statements and returns ordered rows.
type Executor struct {
	db *sql.DB
}

// Open connects to the OpenMRS database described by the credentials.
// The connection is verified eagerly so a bad DSN fails at startup
// rather than on the first question.
func Open(ctx context.Context, creds config.Credentials) (*Executor, error) {
	host := creds.OpenMRSHost
	if host == "" {
		host = "localhost"
	}
	port := creds.OpenMRSPort
	if port == "" {
		port = "3306"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=false",
		creds.OpenMRSUser, creds.OpenMRSPass, host, port, creds.OpenMRSName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening clinical database: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("reaching clinical database: %w", err)
	}

	return &Executor{db: db}, nil
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	return e.db.Close()
}

// Execute runs a query and returns its rows with column order
// preserved. Failures surface as ExecutionError so the pipeline can
// report them as query outcomes rather than process faults.
func (e *Executor) Execute(ctx context.Context, query string) ([]*model.ResultRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &model.ExecutionError{Message: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &model.ExecutionError{Message: err.Error()}
	}

	var results []*model.ResultRow
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &model.ExecutionError{Message: err.Error()}
		}

		row := model.NewResultRow()
		for i, col := range columns {
			row.Set(col, values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.ExecutionError{Message: err.Error()}
	}

	return results, nil
}
