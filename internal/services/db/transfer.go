package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/google/uuid"
)

type TransferDB struct {
	suffix string
	db     *sql.DB
}

// NewTransferDB creates a new DB
func NewTransferDB(db *sql.DB, name string) (*TransferDB, error) {
	return &TransferDB{
		suffix: name,
		db:     db,
	}, nil
}

// CreateTransferTable creates a table to store confirmed custody transfers
func (db *TransferDB) CreateTransferTable() error {
	_, err := db.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS t_custody_transfers_%s(
		id TEXT NOT NULL PRIMARY KEY,
		tx_hash TEXT NOT NULL UNIQUE,
		token_id TEXT NOT NULL,
		from_addr TEXT NOT NULL,
		to_addr TEXT NOT NULL,
		block_number BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	);
	`, db.suffix))

	return err
}

// CreateTransferTableIndexes creates the indexes for custody transfers
func (db *TransferDB) CreateTransferTableIndexes() error {
	_, err := db.db.Exec(fmt.Sprintf(`
	CREATE INDEX IF NOT EXISTS idx_custody_transfers_%s_token_id ON t_custody_transfers_%s (token_id, created_at);
	`, db.suffix, db.suffix))
	if err != nil {
		return err
	}

	_, err = db.db.Exec(fmt.Sprintf(`
	CREATE INDEX IF NOT EXISTS idx_custody_transfers_%s_to_addr ON t_custody_transfers_%s (to_addr);
	`, db.suffix, db.suffix))

	return err
}

// AddReceipt records a confirmed transfer with checksummed addresses, a repeated tx
// hash is ignored
func (db *TransferDB) AddReceipt(ctx context.Context, r *custody.Receipt) error {
	_, err := db.db.ExecContext(ctx, fmt.Sprintf(`
	INSERT INTO t_custody_transfers_%s (id, tx_hash, token_id, from_addr, to_addr, block_number, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT(tx_hash) DO NOTHING
	`, db.suffix), uuid.NewString(), r.TransactionHash, r.TokenID.String(), com.ChecksumAddress(r.From), com.ChecksumAddress(r.To), r.BlockNumber, time.Now().UTC())

	return err
}

// GetReceipts returns the journal for a token, newest first
func (db *TransferDB) GetReceipts(ctx context.Context, tokenID string) ([]*custody.JournalEntry, error) {
	rows, err := db.db.QueryContext(ctx, fmt.Sprintf(`
	SELECT id, tx_hash, token_id, from_addr, to_addr, block_number, created_at
	FROM t_custody_transfers_%s
	WHERE token_id = $1
	ORDER BY created_at DESC, block_number DESC
	`, db.suffix), tokenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*custody.JournalEntry{}
	for rows.Next() {
		var e custody.JournalEntry

		err = rows.Scan(&e.ID, &e.TransactionHash, &e.TokenID, &e.From, &e.To, &e.BlockNumber, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
