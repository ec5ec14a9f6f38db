package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"backoffice/internal/domain/auth"
	"backoffice/internal/platform/config"
	"backoffice/internal/platform/querier"
)

// Seed makes sure the configured company exists with its roles, the
// permission catalogue and an admin account. It is safe to run repeatedly.
func Seed(ctx context.Context, pool querier.TxBeginner, cfg config.Config) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		companyID, err := ensureCompany(ctx, tx, cfg.SeedCompanyName)
		if err != nil {
			return fmt.Errorf("seed company: %w", err)
		}
		if err := ensurePermissions(ctx, tx); err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}
		roleIDs, err := ensureRoles(ctx, tx, companyID)
		if err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
		if err := ensureRolePermissions(ctx, tx, roleIDs); err != nil {
			return fmt.Errorf("seed role permissions: %w", err)
		}
		if err := ensureAdminUser(ctx, tx, companyID, roleIDs[auth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		slog.Info("seed complete", "companyId", companyID, "roles", len(roleIDs))
		return nil
	})
}

func ensureCompany(ctx context.Context, q querier.Querier, name string) (string, error) {
	var id string
	err := q.QueryRow(ctx, "SELECT id FROM companies WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	err = q.QueryRow(ctx, "INSERT INTO companies (name) VALUES ($1) RETURNING id", name).Scan(&id)
	return id, err
}

func ensurePermissions(ctx context.Context, q querier.Querier) error {
	for _, perm := range auth.DefaultPermissions {
		if _, err := q.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm); err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, q querier.Querier, companyID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := q.QueryRow(ctx, `
      INSERT INTO roles (company_id, name) VALUES ($1, $2)
      ON CONFLICT (company_id, name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id
    `, companyID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, q querier.Querier, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := q.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			rows.Close()
			return err
		}
		permMap[key] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			if _, err := q.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, q querier.Querier, companyID, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := q.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, "INSERT INTO users (company_id, email, password_hash, role_id) VALUES ($1, $2, $3, $4)", companyID, email, hash, roleID)
	return err
}
