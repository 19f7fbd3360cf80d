package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/jackyeh168/saveforperks/src/internal/domain/loyalty"
)

// ===========================
// 唯讀參與者
// ===========================

// GORMCustomerRepository 顧客查詢
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 建立顧客 Repository
func NewCustomerRepository(db *gorm.DB) loyalty.CustomerRepository {
	return &GORMCustomerRepository{db: db}
}

// FindByQRToken 以 QR code 查詢
func (r *GORMCustomerRepository) FindByQRToken(ctx context.Context, token loyalty.QRToken) (*loyalty.Customer, error) {
	var model CustomerModel
	err := dbFromContext(ctx, r.db).Where("qr_token = ?", token.String()).First(&model).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrCustomerNotFound, nil)
	}
	return model.toDomain()
}

// GORMOperatorRepository 商家操作員查詢
type GORMOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 建立操作員 Repository
func NewOperatorRepository(db *gorm.DB) loyalty.OperatorRepository {
	return &GORMOperatorRepository{db: db}
}

// FindByID 以 ID 查詢
func (r *GORMOperatorRepository) FindByID(ctx context.Context, id loyalty.OperatorID) (*loyalty.BusinessOperator, error) {
	var model BusinessOperatorModel
	err := dbFromContext(ctx, r.db).First(&model, "id = ?", id.String()).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrOperatorNotFound, nil)
	}
	return model.toDomain()
}

// GORMBusinessRepository 商家查詢
type GORMBusinessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository 建立商家 Repository
func NewBusinessRepository(db *gorm.DB) loyalty.BusinessRepository {
	return &GORMBusinessRepository{db: db}
}

// FindByID 以 ID 查詢
func (r *GORMBusinessRepository) FindByID(ctx context.Context, id loyalty.BusinessID) (*loyalty.Business, error) {
	var model BusinessModel
	err := dbFromContext(ctx, r.db).First(&model, "id = ?", id.String()).Error
	if err != nil {
		return nil, mapError(err, loyalty.ErrBusinessNotFound, nil)
	}
	return model.toDomain()
}
