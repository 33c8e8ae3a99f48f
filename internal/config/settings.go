package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Database groups the DB_* settings.
type Database struct {
	Engine   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DSN renders a driver connection string for the configured engine.
func (d Database) DSN() string {
	switch d.Engine {
	case "postgresql", "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
			Path:   "/" + d.Name,
		}
		return u.String()
	case "sqlite3", "sqlite":
		return d.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4",
			d.User, d.Password, net.JoinHostPort(d.Host, strconv.Itoa(d.Port)), d.Name)
	}
}

// DSNMasked is DSN with the password hidden, for logs.
func (d Database) DSNMasked() string {
	if d.Password != "" {
		d.Password = maskedValue
	}
	return d.DSN()
}

// RedisIndexes are the logical Redis databases used by each subsystem.
type RedisIndexes struct {
	Celery  int
	Cache   int
	Session int
	WS      int
}

// Redis groups the REDIS_* settings.
type Redis struct {
	Host     string
	Port     int
	Password string
	Indexes  RedisIndexes
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Session groups cookie, session and token lifetime settings.
type Session struct {
	CookieDomain         string
	CSRFCookieDomain     string
	Age                  time.Duration
	ExpireAtBrowserClose bool
	LoginURL             string
	TokenExpiration      time.Duration
}

// Server groups the settings the HTTP host process reads.
type Server struct {
	BindHost   string
	ListenPort int
	SiteURL    string
	PageSize   int
	Debug      bool

	// RateLimitRPS and RateLimitBurst bound API traffic; zero disables limiting.
	RateLimitRPS   int
	RateLimitBurst int
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return net.JoinHostPort(s.BindHost, strconv.Itoa(s.ListenPort))
}

// Database reads the DB_* settings.
func (r *Resolved) Database() (Database, error) {
	var (
		d    Database
		errs []error
	)
	d.Engine = r.stringField(KeyDBEngine, &errs)
	d.Host = r.stringField(KeyDBHost, &errs)
	d.Port = r.intField(KeyDBPort, &errs)
	d.Name = r.stringField(KeyDBName, &errs)
	d.User = r.stringField(KeyDBUser, &errs)
	d.Password = r.optionalField(KeyDBPassword, &errs)
	if err := errors.Join(errs...); err != nil {
		return Database{}, fmt.Errorf("database settings: %w", err)
	}
	return d, nil
}

// Redis reads the REDIS_* settings.
func (r *Resolved) Redis() (Redis, error) {
	var (
		rd   Redis
		errs []error
	)
	rd.Host = r.stringField(KeyRedisHost, &errs)
	rd.Port = r.intField(KeyRedisPort, &errs)
	rd.Password = r.optionalField(KeyRedisPassword, &errs)
	rd.Indexes = RedisIndexes{
		Celery:  r.intField(KeyRedisDBCelery, &errs),
		Cache:   r.intField(KeyRedisDBCache, &errs),
		Session: r.intField(KeyRedisDBSession, &errs),
		WS:      r.intField(KeyRedisDBWS, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return Redis{}, fmt.Errorf("redis settings: %w", err)
	}
	return rd, nil
}

// Session reads cookie and session lifetime settings.
func (r *Resolved) Session() (Session, error) {
	var (
		s    Session
		errs []error
	)
	s.CookieDomain = r.optionalField(KeySessionCookieDomain, &errs)
	s.CSRFCookieDomain = r.optionalField(KeyCSRFCookieDomain, &errs)
	s.Age = r.secondsField(KeySessionCookieAge, &errs)
	s.ExpireAtBrowserClose = r.boolField(KeySessionExpireAtBrowserClose, &errs)
	s.LoginURL = r.stringField(KeyLoginURL, &errs)
	s.TokenExpiration = r.secondsField(KeyTokenExpiration, &errs)
	if err := errors.Join(errs...); err != nil {
		return Session{}, fmt.Errorf("session settings: %w", err)
	}
	return s, nil
}

// Server reads the HTTP host settings.
func (r *Resolved) Server() (Server, error) {
	var (
		s    Server
		errs []error
	)
	s.BindHost = r.stringField(KeyHTTPBindHost, &errs)
	s.ListenPort = r.intField(KeyHTTPListenPort, &errs)
	s.SiteURL = r.stringField(KeySiteURL, &errs)
	s.PageSize = r.intField(KeyDisplayPerPage, &errs)
	s.Debug = r.boolField(KeyDebug, &errs)
	s.RateLimitRPS = r.intField(KeyAPIRateLimitRPS, &errs)
	s.RateLimitBurst = r.intField(KeyAPIRateLimitBurst, &errs)
	if s.PageSize <= 0 && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("%s: page size must be positive, got %d", KeyDisplayPerPage, s.PageSize))
	}
	if err := errors.Join(errs...); err != nil {
		return Server{}, fmt.Errorf("server settings: %w", err)
	}
	return s, nil
}

func (r *Resolved) stringField(key Key, errs *[]error) string {
	v, err := r.GetString(key)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func (r *Resolved) optionalField(key Key, errs *[]error) string {
	v, err := r.GetOptionalString(key)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func (r *Resolved) intField(key Key, errs *[]error) int {
	v, err := r.GetInt(key)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func (r *Resolved) boolField(key Key, errs *[]error) bool {
	v, err := r.GetBool(key)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func (r *Resolved) secondsField(key Key, errs *[]error) time.Duration {
	v, err := r.GetSeconds(key)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}
