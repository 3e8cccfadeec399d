package uplink

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

func TestPostgresUplinkInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	u := NewPostgresUplink(db, "greenhouse-3", "readings")

	expectedQuery := regexp.QuoteMeta("INSERT INTO readings (device_id, content) VALUES ($1, $2)")
	mock.ExpectExec(expectedQuery).
		WithArgs("greenhouse-3", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := domain.NewSample()
	s.Set(domain.KeyCO2PPM, 610)

	if err := u.Post(context.Background(), s); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUplinkServerRejectionIsSinkError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	u := NewPostgresUplink(db, "dev", "readings")

	mock.ExpectExec("INSERT INTO readings").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err = u.Post(context.Background(), domain.NewSample())
	var sinkErr *ports.SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if sinkErr.Body != "duplicate key value" {
		t.Fatalf("expected server message preserved, got %q", sinkErr.Body)
	}
}

func TestPostgresUplinkConnectivityIsTransportError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	u := NewPostgresUplink(db, "dev", "readings")

	mock.ExpectExec("INSERT INTO readings").
		WillReturnError(errors.New("connection refused"))

	err = u.Post(context.Background(), domain.NewSample())
	if !ports.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestPostgresUplinkMissingDeviceID(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	u := NewPostgresUplink(db, "", "readings")
	if err := u.Post(context.Background(), domain.NewSample()); !errors.Is(err, ports.ErrDeviceIDMissing) {
		t.Fatalf("expected device id error, got %v", err)
	}
}
