package db

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := migrate(g.DB); err != nil {
		log.Fatalf("unable to run migrations: %v", err)
	}
}

func getPostgresDB(c *config.Config) *gorm.DB {
	log.Printf("Connecting to postgres: %s@%s:%d/%s", c.PostgresUser, c.PostgresHost, c.PostgresPort, c.PostgresDB)
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d connect_timeout=%d",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresConnTimeoutSecs)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		log.Fatal(err)
	}

	// The pool is the only shared resource; bound it so an unavailable
	// database surfaces as a timeout instead of unbounded blocking.
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("unable to get sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(c.PostgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(c.PostgresMaxIdleConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(c.PostgresIdleTimeoutSecs) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("unable to ping database: %v", err)
	}

	return gormDB
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Blacklist{},
		&models.Report{},
		&models.Reward{},
		&models.CollectedWaste{},
		&models.Notification{},
		&models.PointTransaction{},
	)
}

func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{ID: uuid.New(), Name: models.RoleReporter},
		{ID: uuid.New(), Name: models.RoleCollector},
		{ID: uuid.New(), Name: models.RoleAdmin},
	}

	for _, role := range roles {
		if err := db.FirstOrCreate(&role, models.Role{Name: role.Name}).Error; err != nil {
			return err
		}
	}

	return nil
}

// Ping reports whether the underlying pool can still reach postgres.
func (g *GormDB) Ping() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (g *GormDB) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
