package store

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (r *Repositories) ListUsers(ctx context.Context) ([]model.User, error) {
	return do(ctx, r, "users", "list", func() ([]model.User, error) {
		return r.Users.List(ctx)
	})
}

func (r *Repositories) GetUser(ctx context.Context, id string) (model.User, error) {
	return do(ctx, r, "users", "get", func() (model.User, error) {
		return r.Users.Get(ctx, id)
	})
}

// FindUserByEmail returns the active user owning email, compared case-insensitively.
func (r *Repositories) FindUserByEmail(ctx context.Context, email string) (model.User, bool, error) {
	email = normalizeEmail(email)
	var found bool
	u, err := do(ctx, r, "users", "find", func() (model.User, error) {
		u, ok, err := r.Users.First(ctx, func(u model.User) bool {
			return u.IsActive && normalizeEmail(u.Email) == email
		})
		found = ok
		return u, err
	})
	return u, found, err
}

// FindAnyUserByEmail is FindUserByEmail without the active filter.
func (r *Repositories) FindAnyUserByEmail(ctx context.Context, email string) (model.User, bool, error) {
	email = normalizeEmail(email)
	var found bool
	u, err := do(ctx, r, "users", "find", func() (model.User, error) {
		u, ok, err := r.Users.First(ctx, func(u model.User) bool {
			return normalizeEmail(u.Email) == email
		})
		found = ok
		return u, err
	})
	return u, found, err
}

// FindCompanyUser returns the first active COMPANY_USER attached to companyName.
func (r *Repositories) FindCompanyUser(ctx context.Context, companyName string) (model.User, bool, error) {
	var found bool
	u, err := do(ctx, r, "users", "find", func() (model.User, error) {
		u, ok, err := r.Users.First(ctx, func(u model.User) bool {
			return u.IsActive && u.Role == model.RoleCompanyUser && strings.EqualFold(u.CompanyName, companyName)
		})
		found = ok
		return u, err
	})
	return u, found, err
}

func (r *Repositories) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	r.Log.Debug("CreateUser: start", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	return do(ctx, r, "users", "create", func() (model.User, error) {
		u.ID = r.newID("user")
		u.Email = strings.TrimSpace(u.Email)
		u.IsActive = true
		u.CreatedAt = r.now()
		return r.Users.Insert(ctx, u, false)
	})
}

func (r *Repositories) UpdateUser(ctx context.Context, id string, patch model.Patch) (model.User, error) {
	return do(ctx, r, "users", "update", func() (model.User, error) {
		return r.Users.Update(ctx, id, merge[model.User](patch))
	})
}

func (r *Repositories) SetUserIsActive(ctx context.Context, id string, isActive bool) (model.User, error) {
	r.Log.Debug("SetUserIsActive: start", zap.String("user", id), zap.Bool("is_active", isActive))
	return do(ctx, r, "users", "update", func() (model.User, error) {
		return r.Users.Update(ctx, id, func(u model.User) (model.User, error) {
			u.IsActive = isActive
			return u, nil
		})
	})
}

func (r *Repositories) DeleteUser(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "users", "delete", func() (bool, error) {
		return r.Users.Delete(ctx, id)
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// merge builds an update func that shallow-merges patch onto the current
// record. id, createdAt and any protected keys are never overwritten.
func merge[T entity](patch model.Patch, protected ...string) func(T) (T, error) {
	p := patch.Without(append(protected, "id", "createdAt")...)
	return func(cur T) (T, error) {
		return model.Merge(cur, p)
	}
}

func replaceWith[T entity](v T) func(T) (T, error) {
	return func(T) (T, error) { return v, nil }
}
