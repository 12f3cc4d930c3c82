package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

const (
	// hasAccessField and grantedValue identify an access grant in the change log
	hasAccessField = "HASACCESS"
	grantedValue   = "T"

	loginSuccess = "Success"
	loginFailure = "Failure"
)

type directoryRepository struct {
	db          *sql.DB
	schema      string
	adminRoleID model.RoleID
}

var (
	_ interfaces.DirectoryRepository = &directoryRepository{}
	_ interfaces.DirectoryWriter     = &directoryRepository{}
)

// ListEligibleUsers returns users that currently have access, ordered by ID
func (r *directoryRepository) ListEligibleUsers(ctx context.Context) ([]*model.UserCandidate, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, first_name, last_name, email
		FROM %s.directory_users
		WHERE has_access`, r.schema))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query users")
	}
	defer func() { _ = rows.Close() }()

	var users []*model.UserCandidate
	for rows.Next() {
		var u model.UserCandidate
		var id string
		if err := rows.Scan(&id, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, goerr.Wrap(err, "failed to scan user")
		}
		u.ID = model.UserID(id)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate users")
	}

	slices.SortFunc(users, func(a, b *model.UserCandidate) int {
		return model.CompareUserID(a.ID, b.ID)
	})
	return users, nil
}

// MostRecentAccessGrant returns the latest change that set access to granted
func (r *directoryRepository) MostRecentAccessGrant(ctx context.Context, id model.UserID) (model.TimestampSignal, error) {
	var at sql.NullTime
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT MAX(changed_at)
		FROM %s.access_changes
		WHERE user_id = $1 AND field = $2 AND new_value = $3`, r.schema),
		string(id), hasAccessField, grantedValue,
	).Scan(&at)
	if err != nil {
		return model.Absent(), goerr.Wrap(err, "failed to query access grants", goerr.V("user_id", id))
	}
	if !at.Valid {
		return model.Absent(), nil
	}
	return model.Present(at.Time), nil
}

// MostRecentLogin returns the latest successful login
func (r *directoryRepository) MostRecentLogin(ctx context.Context, id model.UserID) (model.TimestampSignal, error) {
	var at sql.NullTime
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT MAX(at)
		FROM %s.login_audit
		WHERE user_id = $1 AND status = $2`, r.schema),
		string(id), loginSuccess,
	).Scan(&at)
	if err != nil {
		return model.Absent(), goerr.Wrap(err, "failed to query login audit", goerr.V("user_id", id))
	}
	if !at.Valid {
		return model.Absent(), nil
	}
	return model.Present(at.Time), nil
}

// EntitlementsFor returns the user's roles with the level of their SAML SSO
// permission. Roles without a definition are reported as non-employee roles.
func (r *directoryRepository) EntitlementsFor(ctx context.Context, id model.UserID) (model.EntitlementSet, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT ur.role_id, COALESCE(ro.name, ''), COALESCE(ro.center_type, ''), rp.level
		FROM %s.user_roles ur
		LEFT JOIN %s.roles ro ON ro.id = ur.role_id
		LEFT JOIN %s.role_permissions rp ON rp.role_id = ur.role_id AND rp.permission = $2
		WHERE ur.user_id = $1
		ORDER BY ur.role_id`, r.schema, r.schema, r.schema),
		string(id), model.SAMLSSOPermission,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query roles", goerr.V("user_id", id))
	}
	defer func() { _ = rows.Close() }()

	set := model.EntitlementSet{}
	for rows.Next() {
		var (
			roleID, name, centerType string
			level                    sql.NullInt64
		)
		if err := rows.Scan(&roleID, &name, &centerType, &level); err != nil {
			return nil, goerr.Wrap(err, "failed to scan role", goerr.V("user_id", id))
		}

		role := model.Role{
			ID:              model.RoleID(roleID),
			Name:            name,
			CenterType:      types.ParseCenterType(centerType),
			IsAdministrator: model.RoleID(roleID) == r.adminRoleID,
		}
		if level.Valid {
			role.SSOLevel = model.SSOLevel(int(level.Int64))
		}
		set = append(set, role)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate roles", goerr.V("user_id", id))
	}

	return set, nil
}

func (r *directoryRepository) PutUser(ctx context.Context, user *model.UserCandidate, hasAccess bool) error {
	if user == nil || user.ID == "" {
		return goerr.New("user ID is required")
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.directory_users (id, first_name, last_name, email, has_access, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			has_access = EXCLUDED.has_access,
			updated_at = now()`, r.schema),
		string(user.ID), user.FirstName, user.LastName, user.Email, hasAccess,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("user_id", user.ID))
	}
	return nil
}

func (r *directoryRepository) AddAccessGrant(ctx context.Context, id model.UserID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.access_changes (id, user_id, field, new_value, changed_at)
		VALUES ($1, $2, $3, $4, $5)`, r.schema),
		uuid.New(), string(id), hasAccessField, grantedValue, at,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to add access grant", goerr.V("user_id", id))
	}
	return nil
}

func (r *directoryRepository) AddLogin(ctx context.Context, id model.UserID, at time.Time, success bool) error {
	status := loginFailure
	if success {
		status = loginSuccess
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.login_audit (id, user_id, at, status)
		VALUES ($1, $2, $3, $4)`, r.schema),
		uuid.New(), string(id), at, status,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to add login", goerr.V("user_id", id))
	}
	return nil
}

func (r *directoryRepository) PutRole(ctx context.Context, role model.Role) error {
	if role.ID == "" {
		return goerr.New("role ID is required", goerr.V("name", role.Name))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.roles (id, name, center_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, center_type = EXCLUDED.center_type`, r.schema),
		string(role.ID), role.Name, role.CenterType.String(),
	); err != nil {
		return goerr.Wrap(err, "failed to put role", goerr.V("role_id", role.ID))
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s.role_permissions WHERE role_id = $1 AND permission = $2`, r.schema),
		string(role.ID), model.SAMLSSOPermission,
	); err != nil {
		return goerr.Wrap(err, "failed to clear role permission", goerr.V("role_id", role.ID))
	}

	if role.SSOLevel != nil {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.role_permissions (role_id, permission, level)
			VALUES ($1, $2, $3)`, r.schema),
			string(role.ID), model.SAMLSSOPermission, *role.SSOLevel,
		); err != nil {
			return goerr.Wrap(err, "failed to put role permission", goerr.V("role_id", role.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit role", goerr.V("role_id", role.ID))
	}
	return nil
}

func (r *directoryRepository) AssignRoles(ctx context.Context, id model.UserID, roleIDs ...model.RoleID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s.user_roles WHERE user_id = $1`, r.schema), string(id)); err != nil {
		return goerr.Wrap(err, "failed to clear roles", goerr.V("user_id", id))
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO %s.user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, r.schema)
	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx, insertSQL, string(id), string(roleID)); err != nil {
			return goerr.Wrap(err, "failed to assign role",
				goerr.V("user_id", id),
				goerr.V("role_id", roleID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit roles", goerr.V("user_id", id))
	}
	return nil
}
