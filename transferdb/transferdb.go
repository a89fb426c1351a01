// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferdb

import (
	"database/sql"

	"github.com/gagliardetto/solana-go"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	time INTEGER NOT NULL,
	kind INTEGER NOT NULL,
	mint BLOB(32) NOT NULL,
	account BLOB(32) NOT NULL,
	fromAddress BLOB(32) NOT NULL,
	toAddress BLOB(32) NOT NULL,
	amount INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transfer_from ON transfer(fromAddress);
CREATE INDEX IF NOT EXISTS idx_transfer_to ON transfer(toAddress);
CREATE INDEX IF NOT EXISTS idx_transfer_account ON transfer(account);`

const selectColumns = "SELECT seq, time, kind, mint, account, fromAddress, toAddress, amount FROM transfer "

// TransferDB manages committed transfers.
type TransferDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens or creates a transfer db at path.
func New(path string) (*TransferDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open transfer db")
	}
	// a single connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(transferTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create transfer schema")
	}
	s, _, _ := sqlite3.Version()
	return &TransferDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem create a memory sqlite db.
func NewMem() (*TransferDB, error) {
	return New(":memory:")
}

// Batch holds transfers written in an open transaction.
// They become visible on Commit and are dropped on Rollback.
type Batch struct {
	tx *sql.Tx
}

func (b *Batch) Commit() error {
	return errors.Wrap(b.tx.Commit(), "commit transfers")
}

func (b *Batch) Rollback() error {
	return b.tx.Rollback()
}

// Stage writes transfers in a new transaction, assigns their Seq and leaves
// the transaction open. The db serves no other query until the batch ends.
func (db *TransferDB) Stage(transfers []*Transfer) (*Batch, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "begin transfers")
	}
	stmt, err := tx.Prepare("INSERT INTO transfer(time, kind, mint, account, fromAddress, toAddress, amount) VALUES (?, ?, ?, ?, ?, ?, ?);")
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	defer stmt.Close()

	for _, trans := range transfers {
		res, err := stmt.Exec(
			int64(trans.Time),
			uint8(trans.Kind),
			trans.Mint.Bytes(),
			trans.Account.Bytes(),
			trans.From.Bytes(),
			trans.To.Bytes(),
			int64(trans.Amount),
		)
		if err != nil {
			tx.Rollback()
			return nil, errors.Wrap(err, "insert transfer")
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		trans.Seq = uint64(seq)
	}
	return &Batch{tx: tx}, nil
}

// Insert inserts transfers in one transaction and assigns their Seq.
func (db *TransferDB) Insert(transfers []*Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	b, err := db.Stage(transfers)
	if err != nil {
		return err
	}
	return b.Commit()
}

// ByAccount returns transfers touching addr as source, destination or owned account,
// ordered by insertion. limit 0 means no limit.
func (db *TransferDB) ByAccount(addr solana.PublicKey, limit uint64) ([]*Transfer, error) {
	stmt := selectColumns + "WHERE fromAddress = ? OR toAddress = ? OR account = ? ORDER BY seq ASC"
	args := []any{addr.Bytes(), addr.Bytes(), addr.Bytes()}
	if limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, int64(limit))
	}
	return db.query(stmt, args...)
}

// All returns every transfer ordered by insertion.
func (db *TransferDB) All() ([]*Transfer, error) {
	return db.query(selectColumns + "ORDER BY seq ASC")
}

func (db *TransferDB) query(stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			seq, time, amount       int64
			kind                    uint8
			mint, account, from, to []byte
		)
		if err := rows.Scan(&seq, &time, &kind, &mint, &account, &from, &to, &amount); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			Seq:     uint64(seq),
			Time:    uint64(time),
			Kind:    Kind(kind),
			Mint:    solana.PublicKeyFromBytes(mint),
			Account: solana.PublicKeyFromBytes(account),
			From:    solana.PublicKeyFromBytes(from),
			To:      solana.PublicKeyFromBytes(to),
			Amount:  uint64(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// Path return db's path.
func (db *TransferDB) Path() string {
	return db.path
}

// Close close sqlite.
func (db *TransferDB) Close() error {
	return db.db.Close()
}
