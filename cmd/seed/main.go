package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/talentoplus/hr-system/internal/core/domain"
	"github.com/talentoplus/hr-system/internal/core/service"
	"github.com/talentoplus/hr-system/internal/infrastructure/config"
	mongoinfra "github.com/talentoplus/hr-system/internal/infrastructure/db/mongo"
	"github.com/talentoplus/hr-system/pkg/logger"
)

const (
	defaultAdminEmail    = "admin@talentoplus.com"
	defaultAdminPassword = "Admin123!"
)

var departments = []domain.Department{
	{Name: "Recursos Humanos", Description: "Gestión del talento y bienestar"},
	{Name: "Tecnología", Description: "Desarrollo y operación de sistemas"},
	{Name: "Finanzas", Description: "Contabilidad y planeación financiera"},
	{Name: "Comercial", Description: "Ventas y atención a clientes"},
}

// Seeds the departments catalogue and a default admin account. Safe to run
// more than once: existing records are left untouched.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	principalRepo := mongoinfra.NewPrincipalRepository(db)
	departmentRepo := mongoinfra.NewDepartmentRepository(db)

	if err := principalRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("principal indexes failed")
	}
	if err := mongoinfra.NewEmployeeRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("employee indexes failed")
	}

	existing, err := departmentRepo.FindAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing departments failed")
	}
	byName := make(map[string]bool, len(existing))
	for _, d := range existing {
		byName[d.Name] = true
	}

	created := 0
	for _, d := range departments {
		if byName[d.Name] {
			continue
		}
		if _, err := departmentRepo.Create(ctx, &d); err != nil {
			log.Fatal().Err(err).Str("name", d.Name).Msg("seeding department failed")
		}
		created++
	}
	log.Info().Int("created", created).Int("existing", len(existing)).Msg("departments seeded")

	adminEmail := envOr("SEED_ADMIN_EMAIL", defaultAdminEmail)
	adminPassword := envOr("SEED_ADMIN_PASSWORD", defaultAdminPassword)

	exists, err := principalRepo.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("admin lookup failed")
	}
	if exists {
		log.Info().Str("email", adminEmail).Msg("admin account already present")
		return
	}

	hasher := service.NewBcryptHasher(bcrypt.DefaultCost)
	hash, err := hasher.Hash(adminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hashing admin password failed")
	}

	_, err = principalRepo.Create(ctx, &domain.Principal{
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
		log.Fatal().Err(err).Msg("creating admin account failed")
	}
	log.Info().Str("email", adminEmail).Msg("admin account created")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
