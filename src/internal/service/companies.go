package service

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (s *Service) ListCompanies(ctx context.Context) ([]model.Company, error) {
	list, err := s.repo.ListCompanies(ctx)
	return list, s.fail(err, "companies")
}

func (s *Service) GetCompany(ctx context.Context, id string) (model.Company, error) {
	c, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return model.Company{}, s.fail(err, "company")
	}
	return c, nil
}

// CreateCompany stores the company and provisions a COMPANY_USER for its
// contact email unless a user, active or not, already holds it.
func (s *Service) CreateCompany(ctx context.Context, c model.Company) (model.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return model.Company{}, invalid("name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, err := s.repo.FindCompanyByName(ctx, c.Name); err != nil {
		return model.Company{}, s.fail(err, "company")
	} else if ok {
		return model.Company{}, conflict("company " + c.Name + " already exists")
	}

	var persistErr error
	created, err := s.repo.CreateCompany(ctx, c)
	if err := keepPersist(&persistErr, err); err != nil {
		return model.Company{}, s.fail(err, "company")
	}

	if email := strings.TrimSpace(created.ContactEmail); email != "" {
		_, exists, err := s.repo.FindAnyUserByEmail(ctx, email)
		if err != nil {
			return created, s.fail(err, "user")
		}
		if !exists {
			u, err := s.repo.CreateUser(ctx, model.User{
				Email:       email,
				Name:        created.Name,
				Role:        model.RoleCompanyUser,
				CompanyName: created.Name,
			})
			if err := keepPersist(&persistErr, err); err != nil {
				return created, s.fail(err, "user")
			}
			s.log.Info("CreateCompany: provisioned user", zap.String("company", created.ID), zap.String("user", u.ID))
		}
	}
	return created, s.fail(persistErr, "company")
}

// CreateCompanyUser adds a COMPANY_USER account to an existing company.
func (s *Service) CreateCompanyUser(ctx context.Context, companyID, name, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return model.User{}, s.fail(err, "company")
	}
	return s.createUser(ctx, model.User{
		Email:       email,
		Name:        name,
		Role:        model.RoleCompanyUser,
		CompanyName: c.Name,
	})
}

func (s *Service) UpdateCompany(ctx context.Context, id string, patch model.Patch) (model.Company, error) {
	c, err := s.repo.UpdateCompany(ctx, id, patch)
	if err != nil {
		return c, s.fail(err, "company")
	}
	return c, nil
}

func (s *Service) DeleteCompany(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.DeleteCompany(ctx, id)
	return ok, s.fail(err, "company")
}
