package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/models"
	"github.com/redis/go-redis/v9"
)

const (
	leaderboardCacheKey = "greenloop:leaderboard"
	leaderboardCacheTTL = 60 * time.Second
)

type RewardService interface {
	GetOrCreateReward(userID uint) (*models.Reward, error)
	GetBalance(userID uint) (int, error)
	Redeem(userID uint, amount int, description string) (*models.Reward, error)
	GetLeaderboard() ([]models.LeaderboardEntry, error)
	GetTransactions(userID uint) ([]models.PointTransaction, error)
	Reconcile(userID uint) (balance int, audited int, err error)
	SetRewardLevel(userID uint, level int) error
	ProcessDailyRewards() (int, error)
}

type rewardService struct {
	Config     *config.Config
	rewardRepo db.RewardRepository
	cache      *redis.Client
}

func NewRewardService(rewardRepo db.RewardRepository, cache *redis.Client, conf *config.Config) RewardService {
	return &rewardService{
		Config:     conf,
		rewardRepo: rewardRepo,
		cache:      cache,
	}
}

func (s *rewardService) GetOrCreateReward(userID uint) (*models.Reward, error) {
	reward, err := s.rewardRepo.GetOrCreateReward(userID)
	if err != nil {
		return nil, fmt.Errorf("error getting or creating reward: %w", err)
	}
	return reward, nil
}

func (s *rewardService) GetBalance(userID uint) (int, error) {
	reward, err := s.rewardRepo.GetOrCreateReward(userID)
	if err != nil {
		return 0, err
	}
	return reward.Points, nil
}

// Redeem debits points atomically; overdraw is rejected before any
// write happens. The redeemed audit row carries the negative delta.
func (s *rewardService) Redeem(userID uint, amount int, description string) (*models.Reward, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("redeem amount must be positive, got %d", amount)
	}
	if description == "" {
		description = "Points redeemed"
	}

	reward, err := s.rewardRepo.CreditPoints(userID, -amount,
		models.TransactionRedeemed,
		description,
		fmt.Sprintf("You've redeemed %d points.", amount),
	)
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// GetLeaderboard serves all reward rows joined with their owners,
// highest points first, through a short-lived redis cache.
func (s *rewardService) GetLeaderboard() ([]models.LeaderboardEntry, error) {
	ctx := context.Background()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, leaderboardCacheKey).Result()
		if err == nil {
			var entries []models.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			log.Printf("leaderboard cache read failed: %v", err)
		}
	}

	entries, err := s.rewardRepo.GetAllRewardsWithUsers()
	if err != nil {
		return nil, fmt.Errorf("error getting leaderboard: %w", err)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("leaderboard cache write failed: %v", err)
			}
		}
	}
	return entries, nil
}

func (s *rewardService) GetTransactions(userID uint) ([]models.PointTransaction, error) {
	txns, err := s.rewardRepo.GetTransactionsByUserID(userID)
	if err != nil {
		log.Printf("error fetching transactions for user %d: %v", userID, err)
		return []models.PointTransaction{}, nil
	}
	return txns, nil
}

// Reconcile compares the reward balance with the signed sum of the
// audit trail; the two must agree for a consistent ledger.
func (s *rewardService) Reconcile(userID uint) (int, int, error) {
	reward, err := s.rewardRepo.GetRewardByUserID(userID)
	if err != nil {
		return 0, 0, err
	}
	audited, err := s.rewardRepo.SumTransactionAmount(userID)
	if err != nil {
		return 0, 0, err
	}
	if reward.Points != audited {
		log.Printf("ledger mismatch for user %d: balance=%d audited=%d", userID, reward.Points, audited)
	}
	return reward.Points, audited, nil
}

// ProcessDailyRewards runs the daily activity bonus batch.
func (s *rewardService) ProcessDailyRewards() (int, error) {
	credited, err := s.rewardRepo.ProcessDailyRewards()
	if err != nil {
		return 0, fmt.Errorf("error processing daily rewards: %w", err)
	}
	log.Printf("daily rewards credited to %d users", credited)
	return credited, nil
}

func (s *rewardService) SetRewardLevel(userID uint, level int) error {
	if level < 1 {
		return fmt.Errorf("level must be at least 1, got %d", level)
	}
	return s.rewardRepo.SetRewardLevel(userID, level)
}
