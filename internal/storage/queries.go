package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const listBankAccounts = `-- name: ListBankAccounts :many
SELECT id, name, balance FROM bank_accounts ORDER BY rowid
`

func (q *Queries) ListBankAccounts(ctx context.Context) ([]BankAccount, error) {
	rows, err := q.db.QueryContext(ctx, listBankAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BankAccount
	for rows.Next() {
		var i BankAccount
		if err := rows.Scan(&i.ID, &i.Name, &i.Balance); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBankAccount = `-- name: GetBankAccount :one
SELECT id, name, balance FROM bank_accounts WHERE id = ?
`

func (q *Queries) GetBankAccount(ctx context.Context, id string) (BankAccount, error) {
	row := q.db.QueryRowContext(ctx, getBankAccount, id)
	var i BankAccount
	err := row.Scan(&i.ID, &i.Name, &i.Balance)
	return i, err
}

const insertBankAccount = `-- name: InsertBankAccount :exec
INSERT INTO bank_accounts (id, name, balance) VALUES (?, ?, ?)
`

func (q *Queries) InsertBankAccount(ctx context.Context, arg BankAccount) error {
	_, err := q.db.ExecContext(ctx, insertBankAccount, arg.ID, arg.Name, arg.Balance)
	return err
}

const updateBankAccount = `-- name: UpdateBankAccount :execrows
UPDATE bank_accounts SET name = ?, balance = ? WHERE id = ?
`

func (q *Queries) UpdateBankAccount(ctx context.Context, arg BankAccount) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBankAccount, arg.Name, arg.Balance, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateBankAccountBalance = `-- name: UpdateBankAccountBalance :execrows
UPDATE bank_accounts SET balance = ? WHERE id = ?
`

func (q *Queries) UpdateBankAccountBalance(ctx context.Context, id, balance string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBankAccountBalance, balance, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBankAccount = `-- name: DeleteBankAccount :execrows
DELETE FROM bank_accounts WHERE id = ?
`

func (q *Queries) DeleteBankAccount(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBankAccount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listCategories = `-- name: ListCategories :many
SELECT id, type, name FROM categories ORDER BY rowid
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Type, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `-- name: GetCategory :one
SELECT id, type, name FROM categories WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id string) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Type, &i.Name)
	return i, err
}

const insertCategory = `-- name: InsertCategory :exec
INSERT INTO categories (id, type, name) VALUES (?, ?, ?)
`

func (q *Queries) InsertCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, insertCategory, arg.ID, arg.Type, arg.Name)
	return err
}

const updateCategory = `-- name: UpdateCategory :execrows
UPDATE categories SET type = ?, name = ? WHERE id = ?
`

func (q *Queries) UpdateCategory(ctx context.Context, arg Category) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCategory, arg.Type, arg.Name, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listOperations = `-- name: ListOperations :many
SELECT id, type, bank_account_id, amount, date, category_id, description
FROM operations ORDER BY rowid
`

func (q *Queries) ListOperations(ctx context.Context) ([]Operation, error) {
	rows, err := q.db.QueryContext(ctx, listOperations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Operation
	for rows.Next() {
		var i Operation
		if err := rows.Scan(&i.ID, &i.Type, &i.BankAccountID, &i.Amount, &i.Date, &i.CategoryID, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getOperation = `-- name: GetOperation :one
SELECT id, type, bank_account_id, amount, date, category_id, description
FROM operations WHERE id = ?
`

func (q *Queries) GetOperation(ctx context.Context, id string) (Operation, error) {
	row := q.db.QueryRowContext(ctx, getOperation, id)
	var i Operation
	err := row.Scan(&i.ID, &i.Type, &i.BankAccountID, &i.Amount, &i.Date, &i.CategoryID, &i.Description)
	return i, err
}

const insertOperation = `-- name: InsertOperation :exec
INSERT INTO operations (id, type, bank_account_id, amount, date, category_id, description)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertOperation(ctx context.Context, arg Operation) error {
	_, err := q.db.ExecContext(ctx, insertOperation,
		arg.ID,
		arg.Type,
		arg.BankAccountID,
		arg.Amount,
		arg.Date,
		arg.CategoryID,
		arg.Description,
	)
	return err
}

const updateOperationDetails = `-- name: UpdateOperationDetails :execrows
UPDATE operations SET category_id = ?, description = ? WHERE id = ?
`

func (q *Queries) UpdateOperationDetails(ctx context.Context, id, categoryID, description string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateOperationDetails, categoryID, description, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteOperation = `-- name: DeleteOperation :execrows
DELETE FROM operations WHERE id = ?
`

func (q *Queries) DeleteOperation(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOperation, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listOperationAmountsByAccount = `-- name: ListOperationAmountsByAccount :many
SELECT type, amount FROM operations WHERE bank_account_id = ?
`

func (q *Queries) ListOperationAmountsByAccount(ctx context.Context, accountID string) ([]OperationAmount, error) {
	rows, err := q.db.QueryContext(ctx, listOperationAmountsByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OperationAmount
	for rows.Next() {
		var i OperationAmount
		if err := rows.Scan(&i.Type, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
