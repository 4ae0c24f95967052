package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aidchain/internal/ledger/models"
	"aidchain/internal/ledger/store"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every method works
// unchanged inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements store.LedgerStore. Amounts travel as base-10
// strings into NUMERIC(78,0) columns, wide enough for any wei-denominated
// balance.
type PostgresStore struct {
	db *sql.DB
	q  querier
}

func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// WithTx runs fn against a transaction-bound store and commits only when fn
// returns nil. A store already bound to a transaction reuses it.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(store.LedgerStore) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	if err := fn(&PostgresStore{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreditDonor(ctx context.Context, donor domain.Account, amount domain.Amount) (domain.Amount, error) {
	query := `
		INSERT INTO donor_balances (account, balance)
		VALUES ($1, $2::numeric)
		ON CONFLICT (account) DO UPDATE
		SET balance = donor_balances.balance + EXCLUDED.balance
		RETURNING balance::text
	`
	var raw string
	if err := s.q.QueryRowContext(ctx, query, donor.String(), amount.String()).Scan(&raw); err != nil {
		return domain.Amount{}, fmt.Errorf("credit donor: %w", err)
	}
	return domain.ParseAmount(raw)
}

func (s *PostgresStore) DonorBalance(ctx context.Context, account domain.Account) (domain.Amount, error) {
	query := `SELECT balance::text FROM donor_balances WHERE account = $1`

	var raw string
	err := s.q.QueryRowContext(ctx, query, account.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ZeroAmount(), nil
	}
	if err != nil {
		return domain.Amount{}, fmt.Errorf("donor balance: %w", err)
	}
	return domain.ParseAmount(raw)
}

func (s *PostgresStore) Pool(ctx context.Context) (domain.Amount, domain.UnitID, error) {
	query := `SELECT current_balance::text, next_unit_id FROM pool_state WHERE id = 0`

	var (
		raw    string
		nextID int64
	)
	if err := s.q.QueryRowContext(ctx, query).Scan(&raw, &nextID); err != nil {
		return domain.Amount{}, 0, fmt.Errorf("read pool state: %w", err)
	}
	balance, err := domain.ParseAmount(raw)
	if err != nil {
		return domain.Amount{}, 0, err
	}
	return balance, domain.UnitID(nextID), nil
}

func (s *PostgresStore) SetPool(ctx context.Context, balance domain.Amount, nextUnitID domain.UnitID) error {
	query := `UPDATE pool_state SET current_balance = $1::numeric, next_unit_id = $2 WHERE id = 0`

	if _, err := s.q.ExecContext(ctx, query, balance.String(), int64(nextUnitID)); err != nil {
		return fmt.Errorf("write pool state: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddCycleDonor(ctx context.Context, donor domain.Account) error {
	query := `INSERT INTO cycle_donors (account) VALUES ($1) ON CONFLICT (account) DO NOTHING`

	if _, err := s.q.ExecContext(ctx, query, donor.String()); err != nil {
		return fmt.Errorf("add cycle donor: %w", err)
	}
	return nil
}

func (s *PostgresStore) CycleDonors(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT account FROM cycle_donors ORDER BY position`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cycle donors: %w", err)
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, fmt.Errorf("scan cycle donor: %w", err)
		}
		out = append(out, domain.Account(account))
	}
	return out, rows.Err()
}

func (s *PostgresStore) ClearCycleDonors(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM cycle_donors`); err != nil {
		return fmt.Errorf("clear cycle donors: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertUnit(ctx context.Context, unit models.AidUnit) error {
	query := `
		INSERT INTO aid_units (id, transfer_team, ground_relief, recipient, location, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.q.ExecContext(ctx, query,
		int64(unit.ID),
		unit.TransferTeam.String(),
		unit.GroundRelief.String(),
		unit.Recipient.String(),
		unit.Location,
		int16(unit.Status),
	)
	if err != nil {
		return fmt.Errorf("insert aid unit: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUnit(ctx context.Context, id domain.UnitID) (models.AidUnit, bool, error) {
	query := `
		SELECT transfer_team, ground_relief, recipient, location, status
		FROM aid_units WHERE id = $1
	`
	var (
		unit                                models.AidUnit
		transferTeam, groundRelief, recipnt string
		status                              int16
	)
	unit.ID = id
	err := s.q.QueryRowContext(ctx, query, int64(id)).
		Scan(&transferTeam, &groundRelief, &recipnt, &unit.Location, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AidUnit{}, false, nil
	}
	if err != nil {
		return models.AidUnit{}, false, fmt.Errorf("get aid unit: %w", err)
	}
	unit.TransferTeam = domain.Account(transferTeam)
	unit.GroundRelief = domain.Account(groundRelief)
	unit.Recipient = domain.Account(recipnt)
	unit.Status = domain.DeliveryStatus(status)
	return unit, true, nil
}

func (s *PostgresStore) UpdateAssignment(ctx context.Context, id domain.UnitID, assignment models.Assignment) error {
	query := `
		UPDATE aid_units
		SET transfer_team = $2, ground_relief = $3, recipient = $4, location = $5
		WHERE id = $1
	`
	res, err := s.q.ExecContext(ctx, query,
		int64(id),
		assignment.TransferTeam.String(),
		assignment.GroundRelief.String(),
		assignment.Recipient.String(),
		assignment.Location,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireUnitRow(res, id)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.UnitID, status domain.DeliveryStatus) error {
	query := `UPDATE aid_units SET status = $2 WHERE id = $1`

	res, err := s.q.ExecContext(ctx, query, int64(id), int16(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireUnitRow(res, id)
}

func requireUnitRow(res sql.Result, id domain.UnitID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", id)
	}
	return nil
}
