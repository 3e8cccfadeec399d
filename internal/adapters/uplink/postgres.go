package uplink

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// PostgresUplink writes samples straight into the readings table, for
// deployments that can reach the database without going through PostgREST.
type PostgresUplink struct {
	db       *sql.DB
	deviceID string
	table    string
}

func NewPostgresUplink(db *sql.DB, deviceID, table string) *PostgresUplink {
	return &PostgresUplink{db: db, deviceID: deviceID, table: table}
}

func (p *PostgresUplink) Name() string { return "postgres" }

func (p *PostgresUplink) Post(ctx context.Context, s *domain.Sample) error {
	if p.deviceID == "" {
		return ports.ErrDeviceIDMissing
	}

	content, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx,
		"INSERT INTO "+p.table+" (device_id, content) VALUES ($1, $2)",
		p.deviceID, content)
	if err == nil {
		return nil
	}

	// A server-side rejection is an application failure; anything else is a
	// connectivity problem the caller may retry after reconnecting.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &ports.SinkError{Body: pqErr.Message}
	}
	return &ports.TransportError{Err: err}
}

var _ ports.Uplink = (*PostgresUplink)(nil)
