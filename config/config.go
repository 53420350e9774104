package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"tutor-mailer/errlog"
)

const (
	DefaultMailHub     = "smtp.gmail.com:587"
	DefaultSenderName  = "Tutor Match"
	DefaultTriggerAddr = "localhost:12345"
	DefaultHTTPPort    = "8080"
)

// Config holds all application configurations. It is built once at startup
// and shared read-only afterwards.
type Config struct {
	SenderEmail    string
	SenderPassword string
	SenderName     string
	MailHost       string
	MailPort       int
	SkipTLSVerify  bool
	TriggerAddr    string
	HTTPPort       string
	DatabaseURL    string
	ErrorLogPath   string
	Env            string
}

// DefaultEnvPath is the .env file next to the running executable.
func DefaultEnvPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ".env"
	}
	return filepath.Join(filepath.Dir(exe), ".env")
}

// LoadConfig reads the .env file at envPath into the process environment and
// builds a Config from it. Any failure is a ConfigurationError.
func LoadConfig(envPath string) (*Config, error) {
	if envPath == "" {
		envPath = DefaultEnvPath()
	}
	if err := godotenv.Load(envPath); err != nil {
		return nil, errlog.Wrap(errlog.KindConfiguration, errlog.TransferUnknown,
			fmt.Sprintf("Error opening .env file: %v", err), err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() (*Config, error) {
	host, port, err := splitMailHub(getenv("MAILHUB", DefaultMailHub))
	if err != nil {
		return nil, errlog.Wrap(errlog.KindConfiguration, errlog.TransferUnknown, err.Error(), err)
	}

	cfg := &Config{
		SenderEmail:    strings.TrimSpace(os.Getenv("EMAIL")),
		SenderPassword: os.Getenv("PASSWORD"),
		SenderName:     getenv("SENDER_NAME", DefaultSenderName),
		MailHost:       host,
		MailPort:       port,
		SkipTLSVerify:  os.Getenv("SKIP_TLS_VERIFY") == "YES",
		TriggerAddr:    getenv("TRIGGER_ADDR", DefaultTriggerAddr),
		HTTPPort:       getenv("PORT", DefaultHTTPPort),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ErrorLogPath:   getenv("ERROR_LOG", errlog.DefaultPath()),
		Env:            getenv("APP_ENV", "production"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the mail credentials are present.
func (c *Config) Validate() error {
	if c.SenderEmail == "" || c.SenderPassword == "" {
		return errlog.New(errlog.KindConfiguration, "EMAIL and PASSWORD must both be set")
	}
	return nil
}

// MailHub returns the relay address as host:port.
func (c *Config) MailHub() string {
	return net.JoinHostPort(c.MailHost, strconv.Itoa(c.MailPort))
}

func splitMailHub(hub string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hub)
	if err != nil {
		return "", 0, fmt.Errorf("invalid MAILHUB format: %s. Expected host:port", hub)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return "", 0, fmt.Errorf("invalid port in MAILHUB: %s", portStr)
	}
	return host, port, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
