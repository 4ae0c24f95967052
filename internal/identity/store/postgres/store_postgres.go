package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aidchain/internal/identity/models"
	"aidchain/pkg/domain"
)

// PostgresStore implements store.RegistryStore on the role_records and
// role_members tables.
type PostgresStore struct {
	db *sql.DB
}

func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveRecord(ctx context.Context, record models.RoleRecord) error {
	query := `
		INSERT INTO role_records (account, identifier, role, location, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (account) DO UPDATE
		SET identifier = EXCLUDED.identifier,
		    role = EXCLUDED.role,
		    location = EXCLUDED.location,
		    updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Account.String(),
		record.Identifier,
		int16(record.Role),
		record.Location,
	)
	if err != nil {
		return fmt.Errorf("save role record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, account domain.Account) (models.RoleRecord, bool, error) {
	query := `SELECT identifier, role, location FROM role_records WHERE account = $1`

	var (
		record models.RoleRecord
		role   int16
	)
	record.Account = account
	err := s.db.QueryRowContext(ctx, query, account.String()).Scan(&record.Identifier, &role, &record.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleRecord{}, false, nil
	}
	if err != nil {
		return models.RoleRecord{}, false, fmt.Errorf("get role record: %w", err)
	}
	record.Role = domain.Role(role)
	return record, true, nil
}

func (s *PostgresStore) AddMember(ctx context.Context, role domain.Role, account domain.Account) error {
	query := `
		INSERT INTO role_members (role, account)
		VALUES ($1, $2)
		ON CONFLICT (role, account) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, int16(role), account.String()); err != nil {
		return fmt.Errorf("add role member: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	query := `SELECT account FROM role_members WHERE role = $1 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, int16(role))
	if err != nil {
		return nil, fmt.Errorf("list role members: %w", err)
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, fmt.Errorf("scan role member: %w", err)
		}
		out = append(out, domain.Account(account))
	}
	return out, rows.Err()
}
