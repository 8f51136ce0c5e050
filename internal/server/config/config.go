// Package config отвечает за:
// - чтение server.yaml
// - подстановку переменных окружения вида ${JWT_SIGNING_KEY}
// - переопределение отдельных полей переменными окружения (PORT, CORS_ALLOWED_ORIGINS, ...)
// - проставление дефолтов
// - валидацию (чтобы сервер не стартовал с дырявыми настройками)
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config - корневая структура всего конфига сервера.
type Config struct {
	Env           string              `yaml:"env"` // dev|stage|prod
	Server        ServerConfig        `yaml:"server"`
	TLS           TLSConfig           `yaml:"tls"`
	DB            DBConfig            `yaml:"db"`
	Migrations    MigrationsConfig    `yaml:"migrations"`
	Auth          AuthConfig          `yaml:"auth"`
	Password      PasswordConfig      `yaml:"password"`
	Uploads       UploadsConfig       `yaml:"uploads"`
	Storage       StorageConfig       `yaml:"storage"`
	Report        ReportConfig        `yaml:"report"`
	CORS          CORSConfig          `yaml:"cors"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig - настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
	MaxHeaderBytes    int           `yaml:"max_header_bytes"` // лимит размера заголовков
}

// TLSConfig - настройки HTTPS. Без TLS сервер слушает обычный HTTP
// (обычно за reverse proxy хостинга).
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"` // "1.2"|"1.3" (1.0/1.1 запрещаем т.к. устарели)
}

// DBConfig - настройки подключения к базе данных.
type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"` // таймаут на Ping при старте
}

// MigrationsConfig - настройки миграций БД.
type MigrationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // file://migrations/postgres
}

// AuthConfig - настройки аутентификации/авторизации.
type AuthConfig struct {
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	AccessTTL time.Duration `yaml:"access_ttl"` // 24h по умолчанию
	JWT       JWTConfig     `yaml:"jwt"`
}

// JWTConfig - как подписываем JWT.
type JWTConfig struct {
	Algorithm  string `yaml:"algorithm"`   // сейчас поддерживаем только HS256
	SigningKey string `yaml:"signing_key"` // может содержать ${JWT_SIGNING_KEY}
}

// PasswordConfig - настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher string       `yaml:"hasher"` // bcrypt|argon2id
	Argon2 Argon2Config `yaml:"argon2"`
	Bcrypt BcryptConfig `yaml:"bcrypt"`
}

// Argon2Config - параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
	KeyLen    uint32 `yaml:"key_len"`
	SaltLen   uint32 `yaml:"salt_len"`
}

// BcryptConfig - параметры bcrypt.
type BcryptConfig struct {
	Cost int `yaml:"cost"`
}

// UploadsConfig - приём файлов снимков.
type UploadsConfig struct {
	StagingDir    string `yaml:"staging_dir"`     // временная папка, файл удаляется после загрузки в хранилище
	MaxImageBytes int64  `yaml:"max_image_bytes"` // 5 MiB
}

// StorageConfig - объектное хранилище (S3-совместимое, MinIO).
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Region          string `yaml:"region"` // без региона клиент сам спрашивает location бакета
	Bucket          string `yaml:"bucket"`
	Folder          string `yaml:"folder"`     // префикс ключей объектов
	PublicURL       string `yaml:"public_url"` // базовый адрес для постоянных ссылок
}

// ReportConfig - оформление PDF-отчёта.
type ReportConfig struct {
	Title string `yaml:"title"`
}

// CORSConfig - разрешённые источники для браузерного фронтенда.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// LogConfig - настройки логирования (zap).
type LogConfig struct {
	Level      string `yaml:"level"`  // debug|info|warn|error
	Format     string `yaml:"format"` // json|console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

// ObservabilityConfig - метрики/pprof.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Pprof   PprofConfig   `yaml:"pprof"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type PprofConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PathPrefix string `yaml:"path_prefix"`
}

// EnvOverrides - переменные окружения, которые перекрывают значения из yaml.
//
// Хостинги обычно отдают порт через PORT, поэтому он проверяется после SERVER_PORT.
type EnvOverrides struct {
	ServerPort     int      `env:"SERVER_PORT"`
	Port           int      `env:"PORT"`
	DatabaseDSN    string   `env:"DATABASE_DSN"`
	JWTSigningKey  string   `env:"JWT_SIGNING_KEY"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MinioEndpoint  string   `env:"MINIO_ENDPOINT"`
	MinioAccessKey string   `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string   `env:"MINIO_SECRET_KEY"`
	MinioBucket    string   `env:"MINIO_BUCKET"`
	LogLevel       string   `env:"LOG_LEVEL"`
}

// Load читает YAML, подставляет переменные окружения вида ${VAR},
// затем парсит в структуру, применяет env-переопределения, проставляет дефолты и валидирует.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	}

	// signing_key: "${JWT_SIGNING_KEY}" -> signing_key: "реальное_значение"
	raw = []byte(ExpandEnvStrict(string(raw)))

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана - оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	re := regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)
	return re.ReplaceAllStringFunc(s, func(m string) string {
		sub := re.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults - дефолтные значения, если в yaml поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DB.ConnectTimeout == 0 {
		cfg.DB.ConnectTimeout = 10 * time.Second
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "file://migrations/postgres"
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 24 * time.Hour
	}
	if cfg.Auth.JWT.Algorithm == "" {
		cfg.Auth.JWT.Algorithm = "HS256"
	}
	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "bcrypt"
	}
	if cfg.Password.Bcrypt.Cost == 0 {
		cfg.Password.Bcrypt.Cost = 10
	}
	if cfg.Uploads.StagingDir == "" {
		cfg.Uploads.StagingDir = "uploads"
	}
	if cfg.Uploads.MaxImageBytes == 0 {
		cfg.Uploads.MaxImageBytes = 5 << 20
	}
	if cfg.Storage.Folder == "" {
		cfg.Storage.Folder = "oralvis-scans"
	}
	if cfg.Report.Title == "" {
		cfg.Report.Title = "OralVis Healthcare - Scan Report"
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Authorization"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Observability.Metrics.Path == "" {
		cfg.Observability.Metrics.Path = "/metrics"
	}
	if cfg.Observability.Pprof.PathPrefix == "" {
		cfg.Observability.Pprof.PathPrefix = "/debug"
	}
}

// Validate проверяет, что конфиг заполнен корректно и безопасно.
// Если что-то не так - возвращаем ошибку и сервер НЕ стартует.
func (c *Config) Validate() error {
	// Базовая проверка сервера
	if c.Server.Host == "" {
		return errors.New("server.host обязателен")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port некорректен: %d", c.Server.Port)
	}

	// TLS/HTTPS
	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return errors.New("tls.cert_file и tls.key_file обязательны при tls.enabled=true")
		}
		if c.TLS.MinVersion == "" {
			c.TLS.MinVersion = "1.2"
		}
		// TLS 1.0/1.1 считаются небезопасными - запрещаем
		if c.TLS.MinVersion == "1.0" || c.TLS.MinVersion == "1.1" {
			return fmt.Errorf("tls.min_version=%s небезопасен; используй 1.2 или 1.3", c.TLS.MinVersion)
		}
	}

	// База данных
	if c.DB.DSN == "" || hasPlaceholder(c.DB.DSN) {
		return errors.New("db.dsn обязателен (через ${DATABASE_DSN} или прямо строкой)")
	}

	// JWT
	alg := strings.ToUpper(strings.TrimSpace(c.Auth.JWT.Algorithm))
	if alg != "HS256" {
		return fmt.Errorf("auth.jwt.algorithm должен быть HS256 (сейчас %q)", c.Auth.JWT.Algorithm)
	}

	// дефолтного ключа нет специально: без него сервер не стартует
	key := strings.TrimSpace(c.Auth.JWT.SigningKey)
	if key == "" {
		return errors.New("auth.jwt.signing_key обязателен (через ${JWT_SIGNING_KEY} или прямо строкой)")
	}
	// Если ${JWT_SIGNING_KEY} не подставился - значит переменная окружения не задана
	if hasPlaceholder(key) {
		return fmt.Errorf("auth.jwt.signing_key содержит неподставленную переменную: %q (нужно задать JWT_SIGNING_KEY)", key)
	}
	// Для HS256 ключ должен быть длинным и случайным
	if len(key) < 32 {
		return fmt.Errorf("auth.jwt.signing_key слишком короткий (%d символов); нужно >= 32", len(key))
	}
	if c.Auth.AccessTTL <= 0 {
		return errors.New("auth.access_ttl должен быть > 0")
	}

	// Хэширование паролей
	switch strings.ToLower(c.Password.Hasher) {
	case "argon2id":
		if c.Password.Argon2.Time == 0 || c.Password.Argon2.MemoryKiB == 0 || c.Password.Argon2.Threads == 0 {
			return errors.New("password.argon2 должен быть настроен для argon2id")
		}
	case "bcrypt":
		if c.Password.Bcrypt.Cost < 4 || c.Password.Bcrypt.Cost > 31 {
			return fmt.Errorf("password.bcrypt.cost должен быть в диапазоне 4..31 (сейчас %d)", c.Password.Bcrypt.Cost)
		}
	default:
		return fmt.Errorf("password.hasher должен быть argon2id|bcrypt (сейчас %q)", c.Password.Hasher)
	}

	// Загрузки
	if c.Uploads.MaxImageBytes <= 0 {
		return errors.New("uploads.max_image_bytes должен быть > 0")
	}

	// Объектное хранилище
	if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
		return errors.New("storage.endpoint и storage.bucket обязательны")
	}
	if hasPlaceholder(c.Storage.AccessKeyID) || hasPlaceholder(c.Storage.SecretAccessKey) {
		return errors.New("storage: не заданы MINIO_ACCESS_KEY/MINIO_SECRET_KEY")
	}

	return nil
}

// ApplyEnvOverrides даёт возможность переопределять
// некоторые настройки через переменные окружения без ${...} в yaml.
// Например PORT=9090 переопределит server.port.
func (c *Config) ApplyEnvOverrides() error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	switch {
	case o.ServerPort > 0:
		c.Server.Port = o.ServerPort
	case o.Port > 0:
		c.Server.Port = o.Port
	}
	if o.DatabaseDSN != "" {
		c.DB.DSN = o.DatabaseDSN
	}
	if o.JWTSigningKey != "" {
		c.Auth.JWT.SigningKey = o.JWTSigningKey
	}
	if len(o.AllowedOrigins) > 0 {
		c.CORS.AllowedOrigins = o.AllowedOrigins
	}
	if o.MinioEndpoint != "" {
		c.Storage.Endpoint = o.MinioEndpoint
	}
	if o.MinioAccessKey != "" {
		c.Storage.AccessKeyID = o.MinioAccessKey
	}
	if o.MinioSecretKey != "" {
		c.Storage.SecretAccessKey = o.MinioSecretKey
	}
	if o.MinioBucket != "" {
		c.Storage.Bucket = o.MinioBucket
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	return nil
}

func hasPlaceholder(s string) bool {
	return strings.Contains(s, "${") && strings.Contains(s, "}")
}
