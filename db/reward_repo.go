package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/greenloophq/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "github.com/greenloophq/greenloop/errors"
)

type RewardRepository interface {
	GetOrCreateReward(userID uint) (*models.Reward, error)
	GetRewardByUserID(userID uint) (*models.Reward, error)
	CreditPoints(userID uint, delta int, txnType, description, message string) (*models.Reward, error)
	CreateTransaction(userID uint, txnType string, amount int, description string) (*models.PointTransaction, error)
	GetAllRewardsWithUsers() ([]models.LeaderboardEntry, error)
	GetTransactionsByUserID(userID uint) ([]models.PointTransaction, error)
	SumTransactionAmount(userID uint) (int, error)
	SetRewardLevel(userID uint, level int) error
	ProcessDailyRewards() (int, error)
}

type rewardRepo struct {
	DB *gorm.DB
}

func NewRewardRepo(db *GormDB) RewardRepository {
	return &rewardRepo{db.DB}
}

// mapDBError folds driver-level failures into the API error taxonomy.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timeout") {
		return errs.ErrConnectionTimeout
	}
	return err
}

// defaultReward is the zero-point row created lazily on first access.
func defaultReward(userID uint) models.Reward {
	return models.Reward{
		UserID:         userID,
		Points:         0,
		Level:          1,
		IsAvailable:    true,
		Name:           "Default Reward",
		CollectionInfo: "Default Collection Info",
	}
}

// creditPointsTx applies one atomic ledger unit inside an open
// transaction: lock the reward row, move the balance, append the audit
// record and write the notification. A failure anywhere rolls the whole
// unit back, so a point credit can never exist without its audit trail.
// Shared with the report repository, which embeds the unit in its own
// transactions.
func creditPointsTx(tx *gorm.DB, userID uint, delta int, txnType, description, message string) (*models.Reward, error) {
	var reward models.Reward
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&reward).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "locking reward row")
		}
		// Concurrent first credits race this insert; DoNothing lets the
		// loser fall through to the shared row instead of tripping the
		// user_id unique index.
		reward = defaultReward(userID)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&reward).Error; err != nil {
			return nil, errors.Wrap(err, "creating reward row")
		}
		// Re-acquire under lock so concurrent creators serialize on the row.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&reward).Error; err != nil {
			return nil, errors.Wrap(err, "re-locking reward row")
		}
	}

	if reward.Points+delta < 0 {
		return nil, errs.ErrInsufficientPoints
	}

	if err := tx.Model(&models.Reward{}).
		Where("id = ?", reward.ID).
		Updates(map[string]interface{}{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return nil, errors.Wrap(err, "updating reward points")
	}

	txn := models.PointTransaction{
		UserID:      userID,
		Type:        txnType,
		Amount:      delta,
		Description: description,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, errors.Wrap(err, "appending point transaction")
	}

	if message != "" {
		notification := models.Notification{
			UserID:  userID,
			Message: message,
			Type:    models.NotificationTypeReward,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return nil, errors.Wrap(err, "writing reward notification")
		}
	}

	reward.Points += delta
	return &reward, nil
}

// GetOrCreateReward returns the user's reward row, creating the
// zero-point default when absent. Idempotent.
func (r *rewardRepo) GetOrCreateReward(userID uint) (*models.Reward, error) {
	var reward models.Reward
	err := r.DB.Where("user_id = ?", userID).First(&reward).Error
	if err == nil {
		return &reward, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapDBError(err)
	}

	reward = defaultReward(userID)
	if err := r.DB.Where(models.Reward{UserID: userID}).FirstOrCreate(&reward).Error; err != nil {
		return nil, errors.Wrap(err, "creating default reward")
	}
	return &reward, nil
}

func (r *rewardRepo) GetRewardByUserID(userID uint) (*models.Reward, error) {
	var reward models.Reward
	if err := r.DB.Where("user_id = ?", userID).First(&reward).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &reward, nil
}

// CreditPoints runs one atomic ledger unit in its own transaction.
// delta may be negative for redemptions; overdraw is rejected.
func (r *rewardRepo) CreditPoints(userID uint, delta int, txnType, description, message string) (*models.Reward, error) {
	var reward *models.Reward
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		reward, txErr = creditPointsTx(tx, userID, delta, txnType, description, message)
		return txErr
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return reward, nil
}

// CreateTransaction appends an immutable audit record outside a ledger
// unit. Callers that mutate points should prefer CreditPoints, which
// pairs the mutation with its record atomically.
func (r *rewardRepo) CreateTransaction(userID uint, txnType string, amount int, description string) (*models.PointTransaction, error) {
	txn := models.PointTransaction{
		UserID:      userID,
		Type:        txnType,
		Amount:      amount,
		Description: description,
	}
	if err := r.DB.Create(&txn).Error; err != nil {
		return nil, errors.Wrap(err, "creating point transaction")
	}
	return &txn, nil
}

// GetAllRewardsWithUsers feeds the leaderboard: reward rows joined with
// the owner's display fields, highest points first.
func (r *rewardRepo) GetAllRewardsWithUsers() ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.DB.Model(&models.Reward{}).
		Select("rewards.id, rewards.user_id, rewards.points, rewards.level, users.fullname AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = rewards.user_id").
		Order("rewards.points DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching rewards with users")
	}
	return entries, nil
}

func (r *rewardRepo) GetTransactionsByUserID(userID uint) ([]models.PointTransaction, error) {
	var txns []models.PointTransaction
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching transactions")
	}
	return txns, nil
}

// SumTransactionAmount totals the signed audit trail for a user; the
// result must reconcile with the reward row's points.
func (r *rewardRepo) SumTransactionAmount(userID uint) (int, error) {
	var total int
	err := r.DB.Model(&models.PointTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "summing transaction amounts")
	}
	return total, nil
}

// ProcessDailyRewards credits every active user the daily activity
// bonus in a single transaction, each credit carrying its own audit
// row and notification. Returns the number of users credited.
func (r *rewardRepo) ProcessDailyRewards() (int, error) {
	var userIDs []uint
	err := r.DB.Model(&models.User{}).
		Where("is_blocked = ?", false).
		Pluck("id", &userIDs).Error
	if err != nil {
		return 0, errors.Wrap(err, "listing active users")
	}

	err = r.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			if _, err := creditPointsTx(tx, userID,
				models.DailyBonusPoints,
				models.TransactionEarnedCollect,
				"Daily activity bonus",
				fmt.Sprintf("You've received %d points as your daily reward!", models.DailyBonusPoints),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapDBError(err)
	}
	return len(userIDs), nil
}

// SetRewardLevel sets the administrative level field.
func (r *rewardRepo) SetRewardLevel(userID uint, level int) error {
	result := r.DB.Model(&models.Reward{}).
		Where("user_id = ?", userID).
		Update("level", level)
	if result.Error != nil {
		return errors.Wrap(result.Error, "setting reward level")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no reward row for user %d: %w", userID, errs.ErrNotFound)
	}
	return nil
}
