package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source resolves settings from the process environment first, then from
// .env and .env.$APP_ENV in the configured directory.
type Source struct {
	appEnv string
	files  map[string]string
	lookup func(string) (string, bool)
}

// Load reads .env and .env.<APP_ENV> from dir. Missing files are skipped;
// the stage file overrides .env. Values are not exported to the process.
func Load(dir string) (*Source, error) {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	s := &Source{appEnv: appEnv, files: map[string]string{}, lookup: os.LookupEnv}
	for _, name := range []string{".env", ".env." + appEnv} {
		values, err := godotenv.Read(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for k, v := range values {
			s.files[k] = v
		}
	}
	return s, nil
}

// AppEnv is the active stage name.
func (s *Source) AppEnv() string {
	return s.appEnv
}

func (s *Source) value(key string) string {
	if v, ok := s.lookup(key); ok && v != "" {
		return v
	}
	return s.files[key]
}

func (s *Source) Get(key string) string {
	return s.value(key)
}

func (s *Source) GetWithDefault(key, defaultValue string) string {
	if v := s.value(key); v != "" {
		return v
	}
	return defaultValue
}

// Require reports every listed key that has no value.
func (s *Source) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if s.value(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
}

func (s *Source) GetBool(key string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(s.value(key))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *Source) GetInt(key string, defaultValue int) int {
	parsed, err := strconv.Atoi(s.value(key))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (s *Source) GetDuration(key string, defaultValue time.Duration) time.Duration {
	parsed, err := time.ParseDuration(s.value(key))
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
