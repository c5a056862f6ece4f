package orm

import (
	"context"

	"educrm-api/pkg/model"

	"gorm.io/gorm"
)

type StaffORM struct {
	db *gorm.DB
}

func NewStaffORM(db *gorm.DB) *StaffORM {
	return &StaffORM{db: db}
}

func (o *StaffORM) Create(ctx context.Context, staff *model.Staff) error {
	return o.db.WithContext(ctx).Create(staff).Error
}

func (o *StaffORM) GetByID(ctx context.Context, id uint) (*model.Staff, error) {
	var staff model.Staff
	if err := o.db.WithContext(ctx).First(&staff, id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (o *StaffORM) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	var staff model.Staff
	if err := o.db.WithContext(ctx).Where("email = ?", email).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (o *StaffORM) GetAll(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	if err := o.db.WithContext(ctx).Order("name ASC").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}
