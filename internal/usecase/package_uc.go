package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
)

// Compile-time check
var _ PackageUseCase = (*packageUC)(nil)

type PackageUseCase interface {
	Create(ctx context.Context, name string, durationYears int, price int64, description string) (*model.Package, error)
	Update(ctx context.Context, id, name string, durationYears int, price int64, description string) (*model.Package, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Package, error)
	List(ctx context.Context) ([]*model.Package, error)
}

type packageUC struct {
	packages repository.PackageRepository
}

func NewPackageUseCase(packages repository.PackageRepository) *packageUC {
	return &packageUC{packages: packages}
}

func (u *packageUC) Create(ctx context.Context, name string, durationYears int, price int64, description string) (*model.Package, error) {
	p, err := model.NewPackage(uuid.NewString(), name, durationYears, price, description)
	if err != nil {
		return nil, err
	}
	if err := u.packages.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *packageUC) Update(ctx context.Context, id, name string, durationYears int, price int64, description string) (*model.Package, error) {
	existing, err := u.packages.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	updated, err := model.NewPackage(existing.ID, name, durationYears, price, description)
	if err != nil {
		return nil, err
	}
	updated.CreatedAt = existing.CreatedAt
	if err := u.packages.Save(ctx, repository.NoTX, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *packageUC) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	return u.packages.Delete(ctx, repository.NoTX, id)
}

func (u *packageUC) FindByID(ctx context.Context, id string) (*model.Package, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.packages.FindByID(ctx, repository.NoTX, id)
}

func (u *packageUC) List(ctx context.Context) ([]*model.Package, error) {
	return u.packages.List(ctx, repository.NoTX)
}
