package employee

import (
	"context"

	"go-directory/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	// Update loads the row under a row lock, lets apply change it and saves it.
	Update(ctx context.Context, id uuid.UUID, apply func(*Employee)) (*Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	conn connection.Provider
}

func NewRepository(conn connection.Provider) Repository {
	return &repository{conn: conn}
}

func (r *repository) db(ctx context.Context) (*gorm.DB, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var empls []Employee
	err = db.Order("created_at ASC").Order("id ASC").Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var empl Employee
	if err := db.First(&empl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, apply func(*Employee)) (*Employee, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var empl Employee
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&empl, "id = ?", id).Error; err != nil {
			return err
		}
		apply(&empl)
		empl.ID = id
		return tx.Save(&empl).Error
	})
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	res := db.Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
