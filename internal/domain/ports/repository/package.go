package repository

import (
	"context"

	"github.com/sellaris/payments/internal/domain/model"
)

type PackageRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Package) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Package, error)
	List(ctx context.Context, tx Tx) ([]*model.Package, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
