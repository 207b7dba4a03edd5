package db

import (
	"database/sql"
	"fmt"
	"math/big"

	"github.com/citizenwallet/custody/internal/storage"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dbBaseFolder   = "data"
	dbConfigString = "cache=private&_journal=WAL&mode=rwc&_txlock=immediate&_busy_timeout=10000"
)

type DB struct {
	chainID *big.Int
	db      *sql.DB

	TransferDB *TransferDB
}

// NewSQLiteDB opens the journal in a local file under basePath
func NewSQLiteDB(chainID *big.Int, basePath string) (*DB, error) {
	folderPath := fmt.Sprintf("%s/%s", basePath, dbBaseFolder)
	path := fmt.Sprintf("%s/custody.db", folderPath)

	if !storage.Exists(folderPath) {
		err := storage.CreateDir(folderPath)
		if err != nil {
			return nil, err
		}
	}

	return open(chainID, "sqlite3", fmt.Sprintf("file:%s?%s", path, dbConfigString), 1)
}

// NewPostgresDB opens the journal in a shared postgres database
func NewPostgresDB(chainID *big.Int, username, password, name, host, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=5432 sslmode=%s", username, password, name, host, sslmode)

	return open(chainID, "postgres", connStr, 0)
}

func open(chainID *big.Int, driver, dsn string, maxConns int) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	txdb, err := NewTransferDB(db, chainID.String())
	if err != nil {
		return nil, err
	}

	err = txdb.CreateTransferTable()
	if err != nil {
		return nil, err
	}

	err = txdb.CreateTransferTableIndexes()
	if err != nil {
		return nil, err
	}

	return &DB{
		chainID:    chainID,
		db:         db,
		TransferDB: txdb,
	}, nil
}

// Close closes the db
func (d *DB) Close() error {
	return d.db.Close()
}
