package models

// Point amounts credited by the ledger.
const (
	ReportPoints     = 10
	CollectionPoints = 15
	DailyBonusPoints = 5
)

// Transaction types; Amount always carries the signed delta, so
// redeemed entries are stored negative and sum(amount) reconciles with
// the reward balance.
const (
	TransactionEarnedReport  = "earned_report"
	TransactionEarnedCollect = "earned_collect"
	TransactionRedeemed      = "redeemed"
)

// Reward is the one-per-user point aggregate. Created lazily on first
// credit; points never go below zero.
type Reward struct {
	Model
	UserID         uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	User           User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Points         int    `json:"points" gorm:"not null;default:0"`
	Level          int    `json:"level" gorm:"not null;default:1"`
	IsAvailable    bool   `json:"is_available" gorm:"not null;default:true"`
	Name           string `json:"name" gorm:"not null"`
	CollectionInfo string `json:"collection_info" gorm:"type:text;not null"`
}

// PointTransaction is an immutable audit entry describing a balance change.
type PointTransaction struct {
	Model
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	User        User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type        string `json:"type" gorm:"not null"`
	Amount      int    `json:"amount" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}

// LeaderboardEntry joins a reward row with its owner's display fields.
type LeaderboardEntry struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Points    int    `json:"points"`
	Level     int    `json:"level"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type RedeemRequest struct {
	Amount      int    `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}
