package orm

import (
	"context"

	"educrm-api/pkg/model"

	"gorm.io/gorm"
)

type ContactORM struct {
	db *gorm.DB
}

func NewContactORM(db *gorm.DB) *ContactORM {
	return &ContactORM{db: db}
}

func (o *ContactORM) Create(ctx context.Context, contact *model.Contact) error {
	return o.db.WithContext(ctx).Create(contact).Error
}

func (o *ContactORM) GetByID(ctx context.Context, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := o.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (o *ContactORM) GetAll(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := o.db.WithContext(ctx).Order("name ASC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}
