package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Media    MediaConfig    `yaml:"media"`
	Editor   EditorConfig   `yaml:"editor"`
	Theme    ThemeConfig    `yaml:"theme"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
	// Format is "console" for humans or "json" for log shippers.
	Format string `yaml:"format" default:"console"`
}

type SiteConfig struct {
	Name string `yaml:"name" default:"The Press"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12700"`
}

type APIConfig struct {
	BaseURL  string        `yaml:"base_url" default:"http://localhost:4000/api/v1"`
	Timeout  time.Duration `yaml:"timeout" default:"15s"`
	PageSize int           `yaml:"page_size" default:"10"`
}

type MediaConfig struct {
	// Uploader is either "api" (multipart to the content API) or "s3".
	Uploader      string   `yaml:"uploader" default:"api"`
	MaxImageWidth int      `yaml:"max_image_width" default:"1600"`
	JPEGQuality   int      `yaml:"jpeg_quality" default:"82"`
	S3            S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" default:""`
	Endpoint  string `yaml:"endpoint" default:""`
	Region    string `yaml:"region" default:"auto"`
	PublicURL string `yaml:"public_url" default:""`
}

type EditorConfig struct {
	Autosave            bool   `yaml:"autosave" default:"true"`
	AutosaveCompression string `yaml:"autosave_compression" default:"zstd"`
	DefaultVideoCaption string `yaml:"default_video_caption" default:"Video caption..."`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" default:"dark-theme"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

// Theme classes set on <html>, and the toggle icon shown while each is
// active.
const (
	LightTheme   = "light-theme"
	DarkTheme    = "dark-theme"
	DefaultTheme = DarkTheme

	LightThemeIcon = `<i class="fa-solid fa-sun"></i>`
	DarkThemeIcon  = `<i class="fa-solid fa-moon"></i>`
)

type DatabaseConfig struct {
	Path string `yaml:"path" default:"./press.db"`
}

var AppConfig = Default()

// Default returns a Config with every default tag applied.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		applyEnv(config)
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)
	AppConfig = config
	return nil
}

// LoadEnv reads a .env file into the process environment when one exists.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		configLogger.Debug().Err(err).Msg("No .env file loaded")
	}
}

// Env returns the environment value for key or def when unset.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func applyEnv(c *Config) {
	c.API.BaseURL = Env(EnvAPIBaseURL, c.API.BaseURL)
	c.Server.Port = Env(EnvPort, c.Server.Port)
	c.Database.Path = Env(EnvDatabasePath, c.Database.Path)
	c.Media.S3.Bucket = Env(EnvS3Bucket, c.Media.S3.Bucket)
	c.Media.S3.Endpoint = Env(EnvS3Endpoint, c.Media.S3.Endpoint)
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if d, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(d))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
