package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Session      SessionConfig      `mapstructure:"session"`
	OSS          OSSConfig          `mapstructure:"oss"`
	OAuth        OAuthConfig        `mapstructure:"oauth"`
	Email        EmailConfig        `mapstructure:"email"`
	Notify       NotifyConfig       `mapstructure:"notify"`
	Queue        QueueConfig        `mapstructure:"queue"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Posting      PostingConfig      `mapstructure:"posting"`
	Scout        ScoutConfig        `mapstructure:"scout"`
	Payment      PaymentConfig      `mapstructure:"payment"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Log          LogConfig          `mapstructure:"log"`
	Upload       UploadConfig       `mapstructure:"upload"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	Domain     string `mapstructure:"domain"`
	Secure     bool   `mapstructure:"secure"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost   string `mapstructure:"smtp_host"`
	SMTPPort   int    `mapstructure:"smtp_port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	AdminEmail string `mapstructure:"admin_email"` // 付款审批、咨询通知的固定收件人
	BaseURL    string `mapstructure:"base_url"`    // 邮件内链接使用的公开地址
}

type NotifyConfig struct {
	Mode       string `mapstructure:"mode"` // inline: 进程内直接发送; queue: 推入 redis 由 worker 发送
	BufferSize int    `mapstructure:"buffer_size"`
	Workers    int    `mapstructure:"workers"`
}

type QueueConfig struct {
	MailQueue  string `mapstructure:"mail_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type SubscriptionConfig struct {
	TrialDays       int `mapstructure:"trial_days"`
	WarningDays     int `mapstructure:"warning_days"`
	ScoutAccessDays int `mapstructure:"scout_access_days"`
}

type PostingConfig struct {
	DailyJobLimit     int `mapstructure:"daily_job_limit"`
	DailyProjectLimit int `mapstructure:"daily_project_limit"`
}

type ScoutConfig struct {
	MinScore      int `mapstructure:"min_score"`
	MaxCandidates int `mapstructure:"max_candidates"`
	DailyLimit    int `mapstructure:"daily_limit"`
}

type PaymentConfig struct {
	ApprovalTTLHours int                       `mapstructure:"approval_ttl_hours"`
	Prices           map[string]MethodPrice    `mapstructure:"prices"`      // wechat / alipay / paypay
	PlanPrices       map[string]float64        `mapstructure:"plan_prices"` // credit 使用的月费 (JPY)
	ScoutPrice       float64                   `mapstructure:"scout_price"` // credit 使用的 scout 价格 (JPY)
	Providers        map[string]ProviderConfig `mapstructure:"providers"`
}

type MethodPrice struct {
	Currency     string  `mapstructure:"currency"`
	Subscription float64 `mapstructure:"subscription"`
	Scout        float64 `mapstructure:"scout"`
}

type ProviderConfig struct {
	MerchantID string `mapstructure:"merchant_id"`
	APIKey     string `mapstructure:"api_key"`     // wechat: MD5 签名密钥
	Secret     string `mapstructure:"secret"`      // paypay: HMAC 密钥
	PublicKey  string `mapstructure:"public_key"`  // alipay: RSA 公钥 (PEM)
	GatewayURL string `mapstructure:"gateway_url"` // 二维码支付链接前缀
}

type CacheConfig struct {
	Driver       string `mapstructure:"driver"` // memory, redis
	SkillsTTLSec int    `mapstructure:"skills_ttl_sec"`
	JobTTLSec    int    `mapstructure:"job_ttl_sec"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

type UploadConfig struct {
	MaxImageSize  int64 `mapstructure:"max_image_size"` // 字节
	MaxResumeSize int64 `mapstructure:"max_resume_size"`
}

func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults 为未配置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.JWT.ExpireHours <= 0 {
		c.JWT.ExpireHours = 72
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "_sid"
	}
	if c.Notify.Mode == "" {
		c.Notify.Mode = "inline"
	}
	if c.Notify.BufferSize <= 0 {
		c.Notify.BufferSize = 256
	}
	if c.Notify.Workers <= 0 {
		c.Notify.Workers = 2
	}
	if c.Queue.MailQueue == "" {
		c.Queue.MailQueue = "mail_queue"
	}
	if c.Queue.MaxWorkers <= 0 {
		c.Queue.MaxWorkers = 2
	}
	if c.Subscription.TrialDays <= 0 {
		c.Subscription.TrialDays = 30
	}
	if c.Subscription.WarningDays <= 0 {
		c.Subscription.WarningDays = 3
	}
	if c.Subscription.ScoutAccessDays <= 0 {
		c.Subscription.ScoutAccessDays = 30
	}
	if c.Posting.DailyJobLimit <= 0 {
		c.Posting.DailyJobLimit = 5
	}
	if c.Posting.DailyProjectLimit <= 0 {
		c.Posting.DailyProjectLimit = 5
	}
	if c.Scout.MinScore <= 0 {
		c.Scout.MinScore = 60
	}
	if c.Scout.MaxCandidates <= 0 {
		c.Scout.MaxCandidates = 50
	}
	if c.Scout.DailyLimit <= 0 {
		c.Scout.DailyLimit = 100
	}
	if c.Payment.ApprovalTTLHours <= 0 {
		c.Payment.ApprovalTTLHours = 24
	}
	if c.Payment.Prices == nil {
		c.Payment.Prices = DefaultPrices()
	}
	if c.Payment.PlanPrices == nil {
		c.Payment.PlanPrices = DefaultPlanPrices()
	}
	if c.Payment.ScoutPrice <= 0 {
		c.Payment.ScoutPrice = 3000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.SkillsTTLSec <= 0 {
		c.Cache.SkillsTTLSec = 600
	}
	if c.Cache.JobTTLSec <= 0 {
		c.Cache.JobTTLSec = 60
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "payment_events"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Upload.MaxImageSize <= 0 {
		c.Upload.MaxImageSize = 5 << 20
	}
	if c.Upload.MaxResumeSize <= 0 {
		c.Upload.MaxResumeSize = 10 << 20
	}
}

// DefaultPrices 各支付方式的固定价格
func DefaultPrices() map[string]MethodPrice {
	return map[string]MethodPrice{
		"wechat": {Currency: "CNY", Subscription: 168, Scout: 150},
		"alipay": {Currency: "CNY", Subscription: 168, Scout: 150},
		"paypay": {Currency: "JPY", Subscription: 3680, Scout: 3000},
	}
}

// DefaultPlanPrices 信用卡支付各订阅方案的月费 (JPY)
func DefaultPlanPrices() map[string]float64 {
	return map[string]float64{
		"BASIC":      3680,
		"PREMIUM":    9800,
		"ENTERPRISE": 29800,
	}
}
