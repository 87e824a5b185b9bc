package repository

import (
	"context"
	"errors"

	"filmverse/internal/domain"

	"gorm.io/gorm"
)

// FavoriteRepository определяет методы для работы с избранным.
// Уникальность пары (user_id, film_id) обеспечивает составной индекс;
// дубликат при гонке всплывает как gorm.ErrDuplicatedKey.
type FavoriteRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]domain.Favorite, error)
	GetByID(ctx context.Context, id int64) (*domain.Favorite, error)
	GetByUserAndFilm(ctx context.Context, userID, filmID int64) (*domain.Favorite, error)
	Exists(ctx context.Context, userID, filmID int64) (bool, error)
	Create(ctx context.Context, favorite *domain.Favorite) error
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (*domain.Favorite, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Toggle(ctx context.Context, favorite *domain.Favorite) (bool, *domain.Favorite, error)
}

// favoriteRepository реализует FavoriteRepository
type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository создаёт новый экземпляр репозитория
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// ListByUserID возвращает всё избранное пользователя, новые сверху.
func (r *favoriteRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	var favorites []domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) GetByID(ctx context.Context, id int64) (*domain.Favorite, error) {
	var favorite domain.Favorite
	if err := r.db.WithContext(ctx).First(&favorite, id).Error; err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) GetByUserAndFilm(ctx context.Context, userID, filmID int64) (*domain.Favorite, error) {
	var favorite domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND film_id = ?", userID, filmID).
		First(&favorite).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

// Exists проверяет, есть ли фильм в избранном у пользователя.
// Используется для отображения состояния кнопки ❤️ на фронте.
func (r *favoriteRepository) Exists(ctx context.Context, userID, filmID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND film_id = ?", userID, filmID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

// UpdateFields применяет частичное обновление и возвращает свежую запись.
func (r *favoriteRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (*domain.Favorite, error) {
	if err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete удаляет запись; вторым значением сообщает, была ли строка.
func (r *favoriteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Favorite{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Toggle атомарно добавляет фильм в избранное либо убирает его. Проверка
// существования и запись идут в одной транзакции; если параллельный Toggle
// успел вставить первым, уникальный индекс ловит гонку и запись
// перечитывается как уже существующая.
func (r *favoriteRepository) Toggle(ctx context.Context, favorite *domain.Favorite) (bool, *domain.Favorite, error) {
	var added bool
	var result *domain.Favorite

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Favorite
		err := tx.Where("user_id = ? AND film_id = ?", favorite.UserID, favorite.FilmID).
			First(&existing).Error

		switch {
		case err == nil:
			added = false
			result = nil
			return tx.Delete(&domain.Favorite{}, existing.ID).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			if createErr := tx.Create(favorite).Error; createErr != nil {
				if errors.Is(createErr, gorm.ErrDuplicatedKey) {
					// Проигравший гонку видит запись победителя.
					var winner domain.Favorite
					if readErr := tx.Where("user_id = ? AND film_id = ?", favorite.UserID, favorite.FilmID).
						First(&winner).Error; readErr != nil {
						return readErr
					}
					added = true
					result = &winner
					return nil
				}
				return createErr
			}
			added = true
			result = favorite
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return false, nil, err
	}
	return added, result, nil
}
