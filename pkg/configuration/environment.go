package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lodgeworks/hutpipe/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"hutpipe"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// ImportOptions configures the external import tasks the pipeline shells out
// to. Each command is a whitespace-separated argv; the date range is appended
// as positional YYYY-MM-DD arguments.
type ImportOptions struct {
	ReservationsCmd string `env:"IMPORT_CMD_RESERVATIONS" envDefault:"bin/import-reservations"`
	DailyCmd        string `env:"IMPORT_CMD_DAILY" envDefault:"bin/import-daily"`
	QuotasCmd       string `env:"IMPORT_CMD_QUOTAS" envDefault:"bin/import-quotas"`
	ProductionCmd   string `env:"IMPORT_CMD_PRODUCTION" envDefault:"bin/import-production"`
	DryRunFlag      string `env:"IMPORT_DRY_RUN_FLAG" envDefault:"--dry-run"`
}

func (i *ImportOptions) Argv(cmd string) []string {
	return strings.Fields(cmd)
}

// Validate checks that every configured import command has an executable part.
func (i *ImportOptions) Validate() error {
	for name, cmd := range map[string]string{
		"IMPORT_CMD_RESERVATIONS": i.ReservationsCmd,
		"IMPORT_CMD_DAILY":        i.DailyCmd,
		"IMPORT_CMD_QUOTAS":       i.QuotasCmd,
		"IMPORT_CMD_PRODUCTION":   i.ProductionCmd,
	} {
		if len(strings.Fields(cmd)) == 0 {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	if strings.TrimSpace(i.DryRunFlag) == "" {
		return fmt.Errorf("IMPORT_DRY_RUN_FLAG must not be empty: without it the dry run would commit")
	}
	return nil
}

type Configuration struct {
	Database DatabaseOptions
	Import   ImportOptions

	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
