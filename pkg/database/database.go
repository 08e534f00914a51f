package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/BartekS5/ingest/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectSQL opens a SQL destination and pings it.
func ConnectSQL(ctx context.Context, p Params) (*sql.DB, *Dialect, error) {
	d, err := DialectFor(p.Driver)
	if err != nil {
		return nil, nil, err
	}
	dsn, err := p.DSN()
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening %s database: %w", d.Name, err)
	}
	// One writer; a single connection keeps sqlite and duckdb files consistent.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error connecting to %s database (ping failed): %w", d.Name, err)
	}

	logger.Infof("Connected to %s", p.Redacted())
	return db, d, nil
}

// ConnectMongo connects to a MongoDB deployment and pings the primary.
func ConnectMongo(ctx context.Context, p Params) (*mongo.Client, error) {
	uri, err := p.DSN()
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error creating MongoDB client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)

		return nil, fmt.Errorf("error connecting to MongoDB (ping failed): %w", err)
	}

	logger.Infof("Connected to %s", p.Redacted())
	return client, nil
}
