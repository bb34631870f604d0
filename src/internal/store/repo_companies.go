package store

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

func (r *Repositories) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return do(ctx, r, "companies", "list", func() ([]model.Company, error) {
		return r.Companies.List(ctx)
	})
}

func (r *Repositories) GetCompany(ctx context.Context, id string) (model.Company, error) {
	return do(ctx, r, "companies", "get", func() (model.Company, error) {
		return r.Companies.Get(ctx, id)
	})
}

func (r *Repositories) FindCompanyByName(ctx context.Context, name string) (model.Company, bool, error) {
	var found bool
	c, err := do(ctx, r, "companies", "find", func() (model.Company, error) {
		c, ok, err := r.Companies.First(ctx, func(c model.Company) bool {
			return strings.EqualFold(c.Name, strings.TrimSpace(name))
		})
		found = ok
		return c, err
	})
	return c, found, err
}

func (r *Repositories) CreateCompany(ctx context.Context, c model.Company) (model.Company, error) {
	return do(ctx, r, "companies", "create", func() (model.Company, error) {
		c.ID = r.newID("company")
		c.CreatedAt = r.now()
		return r.Companies.Insert(ctx, c, true)
	})
}

func (r *Repositories) UpdateCompany(ctx context.Context, id string, patch model.Patch) (model.Company, error) {
	return do(ctx, r, "companies", "update", func() (model.Company, error) {
		return r.Companies.Update(ctx, id, merge[model.Company](patch))
	})
}

func (r *Repositories) DeleteCompany(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "companies", "delete", func() (bool, error) {
		return r.Companies.Delete(ctx, id)
	})
}
