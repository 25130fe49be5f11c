package boot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/junioryono/autowire"
)

// ConfigID is the identifier the Config booter binds the *viper.Viper under.
var ConfigID = autowire.TypeOf[*viper.Viper]()

// ConfigKey identifies one configuration value. Every key known to the
// loaded configuration is bound under its ConfigKey:
//
//	reg.Mark(annotation.OnField[Server]("Port"), reg.Autowired(boot.ConfigKey("http.port")))
type ConfigKey string

func (k ConfigKey) String() string {
	return "config:" + string(k)
}

// ConfigOptions selects the configuration sources. Every field is optional.
type ConfigOptions struct {
	// File is a config file in any format viper reads. It must exist when set.
	File string

	// EnvFile is a dotenv file loaded into the process environment.
	// Variables already set are kept. A missing file is ignored.
	EnvFile string

	// EnvPrefix is prepended to environment variable names: with prefix
	// "APP" the key "db.host" reads APP_DB_HOST.
	EnvPrefix string

	// Defaults are the values used when no other source sets a key.
	Defaults map[string]any
}

// LoadConfig builds a viper instance from opts. Environment variables take
// precedence over the config file, which takes precedence over defaults.
func LoadConfig(opts ConfigOptions) (*viper.Viper, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
	}

	return v, nil
}

// Config returns a booter that loads configuration and binds it: the viper
// instance under ConfigID and each known key under its ConfigKey.
func Config(opts ConfigOptions) Booter {
	return func(ctx context.Context, app *App, next Next) error {
		v, err := LoadConfig(opts)
		if err != nil {
			return err
		}

		app.Bind(ConfigID).ToValue(v)
		for _, key := range v.AllKeys() {
			app.Bind(ConfigKey(key)).ToValue(v.Get(key))
		}

		app.Logger().Debug().
			Str("file", v.ConfigFileUsed()).
			Int("keys", len(v.AllKeys())).
			Msg("configuration loaded")
		return next(ctx)
	}
}
