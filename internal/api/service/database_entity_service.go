package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/models"
	"dbchat/internal/api/repo"
	"dbchat/internal/dao"
	"dbchat/internal/schema"
	"dbchat/pkg"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const schemaCacheTTL = 60 * time.Minute

var ErrNotFound = errors.New("not found")

type DatabaseEntityService struct {
	databaseRepo *repo.DatabaseRepository
	config       dbchat.AppConfig
	logger       zerolog.Logger
}

func NewDatabaseEntityService() *DatabaseEntityService {
	return &DatabaseEntityService{
		databaseRepo: repo.NewDatabaseRepository(),
		config:       dbchat.GetConfig(),
		logger:       dbchat.Logger,
	}
}

func (slf *DatabaseEntityService) Create(userID uint, dto request.CreateDatabaseDTO) (*response.DatabaseResponseDTO, error) {
	encrypted, err := pkg.EncryptCredential(dto.Password, slf.config.CredentialsKey)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error encrypting database credentials")
		return nil, err
	}

	database := models.Database{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     dto.Name,
		Engine:   dto.Engine,
		Host:     dto.Host,
		Port:     dto.Port,
		Username: dto.Username,
		Password: encrypted,
		DbName:   dto.Database,
	}

	if err := slf.databaseRepo.Create(&database); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating database entity")
		return nil, err
	}

	slf.logger.Info().Str("databaseId", database.ID.String()).Uint("userId", userID).Msg("Database registered")
	result := databaseToResponse(database)
	return &result, nil
}

func (slf *DatabaseEntityService) GetByID(userID uint, id uuid.UUID) (*response.DatabaseResponseDTO, error) {
	database, err := slf.owned(userID, id)
	if err != nil {
		return nil, err
	}
	result := databaseToResponse(*database)
	return &result, nil
}

func (slf *DatabaseEntityService) List(userID uint) ([]response.DatabaseResponseDTO, error) {
	databases, err := slf.databaseRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	results := make([]response.DatabaseResponseDTO, 0, len(databases))
	for _, database := range databases {
		results = append(results, databaseToResponse(database))
	}
	return results, nil
}

func (slf *DatabaseEntityService) Update(userID uint, id uuid.UUID, dto request.UpdateDatabaseDTO) (*response.DatabaseResponseDTO, error) {
	database, err := slf.owned(userID, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		database.Name = *dto.Name
	}
	if dto.Host != nil {
		database.Host = *dto.Host
	}
	if dto.Port != nil {
		database.Port = *dto.Port
	}
	if dto.Username != nil {
		database.Username = *dto.Username
	}
	if dto.Database != nil {
		database.DbName = *dto.Database
	}
	if dto.Password != nil {
		encrypted, err := pkg.EncryptCredential(*dto.Password, slf.config.CredentialsKey)
		if err != nil {
			slf.logger.Error().Err(err).Msg("Error encrypting database credentials")
			return nil, err
		}
		database.Password = encrypted
	}

	if err := slf.databaseRepo.Update(database); err != nil {
		slf.logger.Error().Err(err).Msg("Error updating database entity")
		return nil, err
	}

	// connection details changed, the cached DDL may be stale
	_ = pkg.RedisDelete(schemaCacheKey(id))

	result := databaseToResponse(*database)
	return &result, nil
}

func (slf *DatabaseEntityService) Delete(userID uint, id uuid.UUID) error {
	if _, err := slf.owned(userID, id); err != nil {
		return err
	}
	_ = pkg.RedisDelete(schemaCacheKey(id))
	return slf.databaseRepo.Delete(id)
}

// TestConnection opens a short-lived connection and pings it, reporting the
// server version on success. Works on raw credentials, before anything is
// persisted.
func (slf *DatabaseEntityService) TestConnection(dto request.CreateDatabaseDTO) response.TestConnectionResult {
	cfg := dao.ConnConfig{
		Engine:   dao.Engine(dto.Engine),
		Host:     dto.Host,
		Port:     dto.Port,
		Username: dto.Username,
		Password: dto.Password,
		Database: dto.Database,
	}

	db, err := sql.Open(cfg.DriverName(), cfg.BuildConnectionString())
	if err != nil {
		return response.TestConnectionResult{
			Success: false,
			Message: fmt.Sprintf("Failed to open connection: %v", err),
		}
	}
	defer db.Close()

	db.SetConnMaxLifetime(10 * time.Second)
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return response.TestConnectionResult{
			Success: false,
			Message: fmt.Sprintf("Failed to ping database: %v", err),
		}
	}

	var version string
	if query := versionQuery(cfg.Engine); query != "" {
		if err := db.QueryRow(query).Scan(&version); err != nil {
			version = "Unknown"
		}
	}

	return response.TestConnectionResult{
		Success: true,
		Message: "Connection successful",
		Version: version,
	}
}

// Schema returns the DDL rendering of a registered database, cached per
// database so repeated chat turns do not re-introspect an unchanged target.
func (slf *DatabaseEntityService) Schema(ctx context.Context, userID uint, id uuid.UUID) (*response.SchemaResponseDTO, error) {
	database, err := slf.owned(userID, id)
	if err != nil {
		return nil, err
	}

	ddl, err := slf.resolveDdl(ctx, *database)
	if err != nil {
		return nil, err
	}
	return &response.SchemaResponseDTO{DatabaseID: id, Ddl: ddl}, nil
}

func (slf *DatabaseEntityService) resolveDdl(ctx context.Context, database models.Database) (string, error) {
	cacheKey := schemaCacheKey(database.ID)
	var ddl string
	if err := pkg.RedisGet(cacheKey, &ddl); err != nil {
		if !pkg.IsRedisNil(err) {
			return "", fmt.Errorf("redis error: %w", err)
		}

		model, err := slf.introspect(ctx, database)
		if err != nil {
			return "", err
		}
		ddl = schema.Render(model)
		_ = pkg.RedisSet(cacheKey, ddl, schemaCacheTTL)
	}
	return ddl, nil
}

func (slf *DatabaseEntityService) introspect(ctx context.Context, database models.Database) (schema.Model, error) {
	cfg, err := slf.connConfig(database)
	if err != nil {
		return schema.Model{}, err
	}

	d, err := dao.New(ctx, cfg)
	if err != nil {
		return schema.Model{}, err
	}
	defer d.Close()

	return schema.Introspect(ctx, d)
}

// connConfig decrypts the stored credentials into a connection config.
func (slf *DatabaseEntityService) connConfig(database models.Database) (dao.ConnConfig, error) {
	password, err := pkg.DecryptCredential(database.Password, slf.config.CredentialsKey)
	if err != nil {
		slf.logger.Error().Err(err).Str("databaseId", database.ID.String()).Msg("Error decrypting database credentials")
		return dao.ConnConfig{}, err
	}

	return dao.ConnConfig{
		Engine:   dao.Engine(database.Engine),
		Host:     database.Host,
		Port:     database.Port,
		Username: database.Username,
		Password: password,
		Database: database.DbName,
	}, nil
}

func (slf *DatabaseEntityService) owned(userID uint, id uuid.UUID) (*models.Database, error) {
	database, err := slf.databaseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if database.UserID != userID {
		return nil, ErrNotFound
	}
	return &database, nil
}

func schemaCacheKey(databaseID uuid.UUID) string {
	return fmt.Sprintf("database:%s:ddl", databaseID)
}

func versionQuery(engine dao.Engine) string {
	switch engine {
	case dao.EnginePostgres, dao.EngineMySQL:
		return "SELECT version()"
	case dao.EngineSQLServer:
		return "SELECT @@VERSION"
	default:
		return ""
	}
}

func databaseToResponse(database models.Database) response.DatabaseResponseDTO {
	return response.DatabaseResponseDTO{
		ID:       database.ID,
		Name:     database.Name,
		Engine:   database.Engine,
		Host:     database.Host,
		Port:     database.Port,
		Username: database.Username,
		Database: database.DbName,
	}
}
