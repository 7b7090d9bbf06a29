package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"cryptoinsight/domain"
	"cryptoinsight/internal/repository/mysql/model"
)

type userRepository struct {
	DB *gorm.DB
}

var _ domain.UserRepository = (*userRepository)(nil)

// NewUserRepository will create an implementation of domain.UserRepository
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{
		DB: db,
	}
}

func (m *userRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var user model.User
	if err := m.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	return user.ToDomain(), nil
}

func (m *userRepository) Insert(ctx context.Context, a *domain.User) error {
	userModel := model.NewUserFromDomain(a)

	result := m.DB.WithContext(ctx).Create(&userModel)
	if result.Error != nil {
		return result.Error
	}

	a.ID = userModel.ID

	return nil
}

func (m *userRepository) Update(ctx context.Context, a *domain.User) error {
	userModel := model.NewUserFromDomain(a)

	err := m.DB.WithContext(ctx).Model(&userModel).Updates(&userModel).Error
	return err
}

func (m *userRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var user model.User
	if err := m.DB.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	return user.ToDomain(), nil
}

func (m *userRepository) GetByIDs(ctx context.Context, uids []int64) ([]domain.User, error) {
	var users []model.User
	err := m.DB.WithContext(ctx).Model(&model.User{}).Where("id in ?", uids).Find(&users).Error
	res := make([]domain.User, len(users))
	for i := range users {
		res[i] = users[i].ToDomain()
	}
	return res, err
}

func (m *userRepository) Fetch(ctx context.Context, cursor int64, limit int64) ([]domain.User, error) {
	var users []model.User
	err := m.DB.WithContext(ctx).
		Where("id > ?", cursor).
		Order("id").
		Limit(int(limit)).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	res := make([]domain.User, len(users))
	for i := range users {
		res[i] = users[i].ToDomain()
	}
	return res, nil
}

func (m *userRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	result := m.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_banned", banned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
