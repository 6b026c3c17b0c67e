package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"prod"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"jsonfile"` // jsonfile|mysql
	DBPath      string `envconfig:"DB_PATH" default:"data/db.json"`
	MySQLDSN    string `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4&loc=UTC"`

	// empty RedisAddr disables caching
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	RedisPass string        `envconfig:"REDIS_PASSWORD"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"15m"`

	UploadBackend  string `envconfig:"UPLOAD_BACKEND" default:"disk"` // disk|s3
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadFiles int    `envconfig:"MAX_UPLOAD_FILES" default:"5"`
	MaxUploadMB    int64  `envconfig:"MAX_UPLOAD_MB" default:"10"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"auto"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"uploads"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`

	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	TrustProxyHeaders  bool          `envconfig:"TRUST_PROXY_HEADERS" default:"false"`
	RateLimitRPM       int           `envconfig:"RATE_LIMIT_RPM" default:"120"`
	RateLimitBurst     int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	SerializeWrites    bool          `envconfig:"SERIALIZE_WRITES" default:"false"`

	ImportFile string `envconfig:"IMPORT_FILE"`
}

// Load reads .env (if present) into the environment and then the
// environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "jsonfile", "mysql":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.UploadBackend {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when UPLOAD_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.UploadBackend)
	}
	if c.MaxUploadFiles < 1 {
		return errors.New("MAX_UPLOAD_FILES must be at least 1")
	}
	return nil
}

func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }
