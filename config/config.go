package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug                    bool   `envconfig:"debug"`
	Port                     int    `envconfig:"port" default:"8080"`
	Env                      string `envconfig:"env"`
	Host                     string `envconfig:"host"`
	BaseUrl                  string `envconfig:"base_url"`
	PostgresHost             string `envconfig:"postgres_host"`
	PostgresUser             string `envconfig:"postgres_user"`
	PostgresDB               string `envconfig:"postgres_db"`
	PostgresPort             int    `envconfig:"postgres_port"`
	PostgresPassword         string `envconfig:"postgres_password"`
	PostgresMaxOpenConns     int    `envconfig:"postgres_max_open_conns" default:"20"`
	PostgresMaxIdleConns     int    `envconfig:"postgres_max_idle_conns" default:"10"`
	PostgresIdleTimeoutSecs  int    `envconfig:"postgres_idle_timeout_secs" default:"30"`
	PostgresConnTimeoutSecs  int    `envconfig:"postgres_conn_timeout_secs" default:"2"`
	RedisAddress             string `envconfig:"redis_address"`
	RedisPassword            string `envconfig:"redis_password"`
	JWTSecret                string `envconfig:"jwt_secret"`
	MailgunApiKey            string `envconfig:"mg_public_api_key"`
	MgDomain                 string `envconfig:"mg_domain"`
	MgEmailFrom              string `envconfig:"email_from"`
	AwsRegion                string `envconfig:"aws_region"`
	AwsAccessKeyID           string `envconfig:"aws_access_key_id"`
	AwsSecretAccessKey       string `envconfig:"aws_secret_access_key"`
	AwsBucketName            string `envconfig:"aws_bucket_name"`
	VisionServiceURL         string `envconfig:"vision_service_url"`
	VisionServiceKey         string `envconfig:"vision_service_key"`
	AccessControlAllowOrigin string `envconfig:"access_control_allow_origin"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("greenloop", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
