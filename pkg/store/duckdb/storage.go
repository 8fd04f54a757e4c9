package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const CategoriesSchema = `
	CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR NOT NULL PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL
	);
`

const WalletsSchema = `
	CREATE TABLE IF NOT EXISTS wallets (
		id VARCHAR NOT NULL PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL
	);
`

const AccountsSchema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR NOT NULL PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL
	);
`

const TransactionsSchema = `
	CREATE TABLE IF NOT EXISTS transactions (
		id VARCHAR NOT NULL PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		description VARCHAR,
		amount_cents BIGINT NOT NULL,
		category_id VARCHAR,
		wallet_id VARCHAR,
		account_id VARCHAR,
		installment_number INTEGER DEFAULT 0,
		installment_total INTEGER DEFAULT 0,
		occurred_at DATE NOT NULL
	);
`

const SavedReportsSchema = `
	CREATE TABLE IF NOT EXISTS saved_reports (
		id VARCHAR NOT NULL PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		description VARCHAR,
		report_type VARCHAR NOT NULL,
		filters JSON,
		visualization VARCHAR NOT NULL,
		is_template BOOLEAN DEFAULT FALSE,
		is_favorite BOOLEAN DEFAULT FALSE,
		last_run_at TIMESTAMP NULL,
		run_count BIGINT DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	CategoriesSchema,
	WalletsSchema,
	AccountsSchema,
	TransactionsSchema,
	SavedReportsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
