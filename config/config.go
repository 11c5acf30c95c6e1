package config

import "time"

type Config struct {
	Web     Web
	DB      DB
	Redis   Redis
	Session Session
	Cache   Cache
	Site    Site
	Admin   Admin
	Rate    Rate
	Cors    Cors
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:storefront"`
	MaxIdleConns int    `conf:"default:0"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
	Migrate      bool   `conf:"default:true"`
}

type Redis struct {
	Address  string `conf:"default:localhost:6379"`
	Password string `conf:"default:,mask"`
	DB       int    `conf:"default:0"`

	// Namespace prefixes every key this site writes.
	Namespace string `conf:"default:storefront"`

	// Local keeps the site cache in-process instead of Redis.
	Local bool `conf:"default:false"`
}

type Session struct {
	Lifetime     time.Duration `conf:"default:336h"`
	CookieSecure bool          `conf:"default:false"`
}

type Cache struct {
	NavTTL    time.Duration `conf:"default:1h"`
	ListTTL   time.Duration `conf:"default:5m"`
	DetailTTL time.Duration `conf:"default:10m"`
}

type Site struct {
	BaseURL     string `conf:"default:http://localhost:8000"`
	Brand       string `conf:"default:FullScopeMD"`
	CheckoutURL string `conf:"default:"`
}

type Admin struct {
	Token string `conf:"default:,mask"`
}

type Rate struct {
	Burst    int           `conf:"default:5"`
	Interval time.Duration `conf:"default:2s"`

	// Expiry is the number of idle minutes after which a client is forgotten.
	Expiry int `conf:"default:10"`
}

type Cors struct {
	Origin string `conf:"default:"`
}
