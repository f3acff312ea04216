package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// DBFile persiste los parámetros de conexión en un archivo YAML local.
// Es lo que escribe la pantalla de configuración (/api/config/db).
type DBFile struct {
	mu   sync.Mutex
	path string
}

// NewDBFile construye el almacén sobre la ruta indicada.
func NewDBFile(path string) *DBFile {
	return &DBFile{path: path}
}

// Path ruta del archivo.
func (f *DBFile) Path() string { return f.path }

// Load lee el archivo. found=false si aún no existe.
func (f *DBFile) Load() (cfg DBConfig, found bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DBConfig{}, false, nil
		}
		return DBConfig{}, false, fmt.Errorf("stat %s: %w", f.path, err)
	}
	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return DBConfig{}, false, fmt.Errorf("leer %s: %w", f.path, err)
	}
	cfg = DBConfig{
		DatabaseURL: v.GetString("db.database_url"),
		Host:        v.GetString("db.host"),
		Port:        v.GetInt("db.port"),
		User:        v.GetString("db.user"),
		Password:    v.GetString("db.password"),
		DBName:      v.GetString("db.name"),
		SSLMode:     v.GetString("db.sslmode"),
	}
	return cfg, true, nil
}

// Save escribe los parámetros (sobrescribe el archivo).
func (f *DBFile) Save(cfg DBConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("crear directorio %s: %w", dir, err)
		}
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("db.database_url", cfg.DatabaseURL)
	v.Set("db.host", cfg.Host)
	v.Set("db.port", cfg.Port)
	v.Set("db.user", cfg.User)
	v.Set("db.password", cfg.Password)
	v.Set("db.name", cfg.DBName)
	v.Set("db.sslmode", cfg.SSLMode)
	if err := v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("escribir %s: %w", f.path, err)
	}
	return os.Chmod(f.path, 0o600)
}

// Merge aplica sobre base los valores no vacíos de override.
func Merge(base, override DBConfig) DBConfig {
	out := base
	if override.DatabaseURL != "" {
		out.DatabaseURL = override.DatabaseURL
	}
	if override.Host != "" {
		out.Host = override.Host
	}
	if override.Port != 0 {
		out.Port = override.Port
	}
	if override.User != "" {
		out.User = override.User
	}
	if override.Password != "" {
		out.Password = override.Password
	}
	if override.DBName != "" {
		out.DBName = override.DBName
	}
	if override.SSLMode != "" {
		out.SSLMode = override.SSLMode
	}
	return out
}
