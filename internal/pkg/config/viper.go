package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: app.server.http.port is read
// from CENETY_APP_SERVER_HTTP_PORT when set.
const EnvPrefix = "CENETY"

// Viper implements Config on top of spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the file at path and reloads it whenever it changes on disk.
func NewViper(path string) (*Viper, error) {
	v := newViper()

	ext := filepath.Ext(path)
	v.AddConfigPath(filepath.Dir(path))
	v.SetConfigName(strings.TrimSuffix(filepath.Base(path), ext))
	if ext != "" {
		v.SetConfigType(strings.TrimPrefix(ext, "."))
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		slog.Info("config file changed, reloaded", "path", path, "op", ev.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes parses data of the given type ("yaml", "json", ...).
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config: type is required")
	}

	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func (c *Viper) IsSet(key string) bool            { return c.v.IsSet(key) }
func (c *Viper) GetString(key string) string      { return c.v.GetString(key) }
func (c *Viper) GetBool(key string) bool          { return c.v.GetBool(key) }
func (c *Viper) GetInt(key string) int            { return c.v.GetInt(key) }
func (c *Viper) GetInt64(key string) int64        { return c.v.GetInt64(key) }
func (c *Viper) GetUint16(key string) uint16      { return uint16(c.v.GetUint(key)) }
func (c *Viper) GetFloat64(key string) float64    { return c.v.GetFloat64(key) }
func (c *Viper) GetSecond(key string) time.Duration { return time.Duration(c.v.GetInt64(key)) * time.Second }
func (c *Viper) GetMinute(key string) time.Duration { return time.Duration(c.v.GetInt64(key)) * time.Minute }

func (c *Viper) GetBinary(key string) []byte {
	b, err := base64.StdEncoding.DecodeString(c.v.GetString(key))
	if err != nil {
		return nil
	}
	return b
}

func (c *Viper) GetArray(key string) []string {
	var out []string
	for _, item := range strings.Split(c.v.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Viper) GetMap(key string) map[string]string {
	out := make(map[string]string)
	for _, item := range c.GetArray(key) {
		k, v, ok := strings.Cut(item, ":")
		if ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

func (c *Viper) Close() error { return nil }
