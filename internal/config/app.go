package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
	// HealthCheckSec is how often idle connections are checked.
	HealthCheckSec int `mapstructure:"health_check_sec"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	AdminRole string `mapstructure:"admin_role"`
}

type Scheduler struct {
	PollIntervalSec int `mapstructure:"poll_interval_seconds"`
}

type MetalBounds struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// Fallback is the static per-gram table served when every source and the
// persisted rates are unavailable.
type Fallback struct {
	Gold   float64 `mapstructure:"gold"`
	Gold22 float64 `mapstructure:"gold_22k"`
	Silver float64 `mapstructure:"silver"`
}

// ScaleRule divides a raw figure above Above by Divisor to get a per-gram figure.
type ScaleRule struct {
	Above   float64 `mapstructure:"above"`
	Divisor float64 `mapstructure:"divisor"`
}

type Scale struct {
	Gold   []ScaleRule `mapstructure:"gold"`
	Silver []ScaleRule `mapstructure:"silver"`
}

type Rates struct {
	CacheTTLSec       int         `mapstructure:"cache_ttl_seconds"`
	GoldBounds        MetalBounds `mapstructure:"gold_bounds"`
	SilverBounds      MetalBounds `mapstructure:"silver_bounds"`
	Gold22PurityRatio float64     `mapstructure:"gold22_purity_ratio"`
	MaxMargin         float64     `mapstructure:"max_margin"`
	Fallback          Fallback    `mapstructure:"fallback"`
	Scale             Scale       `mapstructure:"scale"`
}

type Finance struct {
	BaseURL          string  `mapstructure:"base_url"`
	GoldSymbol       string  `mapstructure:"gold_symbol"`
	SilverSymbol     string  `mapstructure:"silver_symbol"`
	FXSymbol         string  `mapstructure:"fx_symbol"`
	GoldPremium      float64 `mapstructure:"gold_premium"`
	SilverPremium    float64 `mapstructure:"silver_premium"`
	RequestTimeoutMs int     `mapstructure:"request_timeout_ms"`
}

// Render controls the headless browser behind the rendered source.
type Render struct {
	Browser    bool   `mapstructure:"browser"`
	ChromePath string `mapstructure:"chrome_path"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
	SettleMs   int    `mapstructure:"settle_ms"`
}

type Quotes struct {
	Order          []string `mapstructure:"order"`
	PrimaryURL     string   `mapstructure:"primary_url"`
	SecondaryGold  string   `mapstructure:"secondary_gold_url"`
	SecondarySilvr string   `mapstructure:"secondary_silver_url"`
	PreferMCX      string   `mapstructure:"prefer_mcx"`
	MCXWindow      string   `mapstructure:"mcx_window"`
	Finance        Finance  `mapstructure:"finance"`
	Render         Render   `mapstructure:"render"`
}

type Booking struct {
	LockTTLHours int     `mapstructure:"lock_ttl_hours"`
	FreezeRPS    float64 `mapstructure:"freeze_rps"`
	FreezeBurst  int     `mapstructure:"freeze_burst"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	Logging    Logging    `mapstructure:"logging"`
	Redis      Redis      `mapstructure:"redis"`
	Auth       Auth       `mapstructure:"auth"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Rates      Rates      `mapstructure:"rates"`
	Quotes     Quotes     `mapstructure:"quotes"`
	Booking    Booking    `mapstructure:"booking"`
}

func Init() (*AppConfig, error) {
	return Load("config.yaml")
}

// Load reads the yaml file at path, overlays environment variables and applies defaults.
// A missing .env file is not an error.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	setDefaults(v)
	bindEnv(v)

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.Quotes.Order = normalizeOrder(cfg.Quotes.Order)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("db_server.min_conns", 2)
	v.SetDefault("db_server.health_check_sec", 30)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("http_client.user_agent", "Mozilla/5.0 (compatible; metalrates/1.0)")
	v.SetDefault("logging.level", "info")
	v.SetDefault("redis.channel", "live-rate")
	v.SetDefault("auth.admin_role", "admin")

	v.SetDefault("scheduler.poll_interval_seconds", 60)

	v.SetDefault("rates.cache_ttl_seconds", 60)
	v.SetDefault("rates.gold_bounds.min", 6000)
	v.SetDefault("rates.gold_bounds.max", 90000)
	v.SetDefault("rates.silver_bounds.min", 80)
	v.SetDefault("rates.silver_bounds.max", 500)
	v.SetDefault("rates.gold22_purity_ratio", 0.916)
	v.SetDefault("rates.max_margin", 5000)
	v.SetDefault("rates.fallback.gold", 16288)
	v.SetDefault("rates.fallback.gold_22k", 14931)
	v.SetDefault("rates.fallback.silver", 285)
	v.SetDefault("rates.scale.gold", []map[string]any{
		{"above": 1000000, "divisor": 1000},
		{"above": 20000, "divisor": 10},
	})
	v.SetDefault("rates.scale.silver", []map[string]any{
		{"above": 50000, "divisor": 1000},
		{"above": 5000, "divisor": 100},
		{"above": 500, "divisor": 10},
	})

	v.SetDefault("quotes.order", []string{"text", "rendered", "secondary", "finance"})
	v.SetDefault("quotes.primary_url", "https://www.emeraldbullion.com/")
	v.SetDefault("quotes.secondary_gold_url", "https://www.goodreturns.in/gold-rates/")
	v.SetDefault("quotes.secondary_silver_url", "https://www.goodreturns.in/silver-rates/")
	v.SetDefault("quotes.finance.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quotes.finance.gold_symbol", "GC=F")
	v.SetDefault("quotes.finance.silver_symbol", "SI=F")
	v.SetDefault("quotes.finance.fx_symbol", "INR=X")
	v.SetDefault("quotes.finance.gold_premium", 1.15)
	v.SetDefault("quotes.finance.silver_premium", 1.12)
	v.SetDefault("quotes.finance.request_timeout_ms", 5000)
	v.SetDefault("quotes.render.browser", true)
	v.SetDefault("quotes.render.timeout_ms", 30000)
	v.SetDefault("quotes.render.settle_ms", 1500)

	v.SetDefault("booking.lock_ttl_hours", 24)
	v.SetDefault("booking.freeze_rps", 1)
	v.SetDefault("booking.freeze_burst", 5)
}

func bindEnv(v *viper.Viper) {
	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("db_server.min_conns", "DB_MIN_CONNS")

	// http
	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	// redis + auth
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// rate engine
	_ = v.BindEnv("scheduler.poll_interval_seconds", "RATE_POLL_INTERVAL_SECONDS")
	_ = v.BindEnv("rates.cache_ttl_seconds", "RATE_CACHE_TTL_SECONDS")
	_ = v.BindEnv("rates.gold_bounds.min", "GOLD_MIN_PER_GRAM")
	_ = v.BindEnv("rates.gold_bounds.max", "GOLD_MAX_PER_GRAM")
	_ = v.BindEnv("rates.silver_bounds.min", "SILVER_MIN_PER_GRAM")
	_ = v.BindEnv("rates.silver_bounds.max", "SILVER_MAX_PER_GRAM")

	// quote sources
	_ = v.BindEnv("quotes.primary_url", "EMERALD_URL")
	_ = v.BindEnv("quotes.prefer_mcx", "EMERALD_PREFER_MCX")
	_ = v.BindEnv("quotes.mcx_window", "EMERALD_MCX_WINDOW")
	_ = v.BindEnv("quotes.render.browser", "EMERALD_HEADLESS")
	_ = v.BindEnv("quotes.render.chrome_path", "CHROME_PATH")
	_ = v.BindEnv("quotes.finance.base_url", "FINANCE_API_BASE_URL")
	_ = v.BindEnv("quotes.finance.gold_premium", "GOLD_PREMIUM_MULTIPLIER")
	_ = v.BindEnv("quotes.finance.silver_premium", "SILVER_PREMIUM_MULTIPLIER")
}

func normalizeOrder(order []string) []string {
	out := make([]string, 0, len(order))
	for _, o := range order {
		// env values arrive as one comma separated string
		for _, part := range strings.Split(o, ",") {
			if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
