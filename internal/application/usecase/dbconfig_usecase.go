package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ConnTester abre una conexión de prueba con el DSN dado.
type ConnTester interface {
	Test(ctx context.Context, dsn string) error
}

const dbTestTimeout = 5 * time.Second

// DBConfigUseCase pantalla de configuración de la base de datos. Los
// parámetros se guardan en un archivo local y se aplican al reiniciar.
type DBConfigUseCase struct {
	base   config.DBConfig
	file   *config.DBFile
	tester ConnTester
	log    *logger.Logger
}

// NewDBConfigUseCase construye el caso de uso. base son los valores de entorno.
func NewDBConfigUseCase(base config.DBConfig, file *config.DBFile, tester ConnTester, log *logger.Logger) *DBConfigUseCase {
	return &DBConfigUseCase{base: base, file: file, tester: tester, log: log.Named("config_db")}
}

func (uc *DBConfigUseCase) current() (config.DBConfig, string, error) {
	saved, found, err := uc.file.Load()
	if err != nil {
		return config.DBConfig{}, "", err
	}
	if !found {
		return uc.base, "env", nil
	}
	return config.Merge(uc.base, saved), "file", nil
}

// Get devuelve los parámetros vigentes sin la contraseña.
func (uc *DBConfigUseCase) Get(_ context.Context) (*dto.DBConfigResponse, error) {
	cfg, source, err := uc.current()
	if err != nil {
		return nil, err
	}
	return uc.toResponse(cfg, source), nil
}

// Save valida y persiste los parámetros. Contraseña vacía conserva la actual.
func (uc *DBConfigUseCase) Save(_ context.Context, in dto.DBConfigRequest) (*dto.DBConfigResponse, error) {
	cfg, err := uc.resolve(in)
	if err != nil {
		return nil, err
	}
	if err := uc.file.Save(cfg); err != nil {
		return nil, err
	}
	uc.log.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Str("file", uc.file.Path()).Msg("configuración de base de datos guardada")
	resp := uc.toResponse(config.Merge(uc.base, cfg), "file")
	resp.Restart = true
	return resp, nil
}

// Test intenta conectar con los parámetros dados. Un fallo de conexión no es
// un error de la operación: se informa en la respuesta.
func (uc *DBConfigUseCase) Test(ctx context.Context, in dto.DBConfigRequest) (*dto.DBTestResponse, error) {
	cfg, err := uc.resolve(in)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, dbTestTimeout)
	defer cancel()

	start := time.Now()
	err = uc.tester.Test(ctx, cfg.ConnectionString())
	latency := time.Since(start).Milliseconds()
	if err != nil {
		uc.log.Warn().Err(err).Str("host", cfg.Host).Msg("prueba de conexión fallida")
		return &dto.DBTestResponse{OK: false, Message: err.Error(), LatencyMS: latency}, nil
	}
	return &dto.DBTestResponse{OK: true, Message: "conexión establecida", LatencyMS: latency}, nil
}

func (uc *DBConfigUseCase) resolve(in dto.DBConfigRequest) (config.DBConfig, error) {
	cfg := config.DBConfig{
		DatabaseURL: strings.TrimSpace(in.DatabaseURL),
		Host:        strings.TrimSpace(in.Host),
		Port:        in.Port,
		User:        strings.TrimSpace(in.User),
		Password:    in.Password,
		DBName:      strings.TrimSpace(in.Name),
		SSLMode:     strings.TrimSpace(in.SSLMode),
	}
	if cfg.DatabaseURL != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			return config.DBConfig{}, fmt.Errorf("%w: database_url debe ser postgres://...", domain.ErrInvalidInput)
		}
		return cfg, nil
	}
	if cfg.Host == "" || cfg.User == "" || cfg.DBName == "" {
		return config.DBConfig{}, fmt.Errorf("%w: host, user y name son obligatorios", domain.ErrInvalidInput)
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return config.DBConfig{}, fmt.Errorf("%w: puerto %d fuera de rango", domain.ErrInvalidInput, cfg.Port)
	}
	switch cfg.SSLMode {
	case "":
		cfg.SSLMode = "disable"
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return config.DBConfig{}, fmt.Errorf("%w: sslmode %q inválido", domain.ErrInvalidInput, cfg.SSLMode)
	}
	if cfg.Password == "" {
		current, _, err := uc.current()
		if err != nil {
			return config.DBConfig{}, err
		}
		cfg.Password = current.Password
	}
	return cfg, nil
}

func (uc *DBConfigUseCase) toResponse(cfg config.DBConfig, source string) *dto.DBConfigResponse {
	return &dto.DBConfigResponse{
		DatabaseURL: redactURL(cfg.DatabaseURL),
		Host:        cfg.Host,
		Port:        cfg.Port,
		User:        cfg.User,
		PasswordSet: cfg.Password != "" || hasURLPassword(cfg.DatabaseURL),
		Name:        cfg.DBName,
		SSLMode:     cfg.SSLMode,
		Source:      source,
		File:        uc.file.Path(),
	}
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

func hasURLPassword(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
