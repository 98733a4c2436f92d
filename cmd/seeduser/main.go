// cmd/seeduser creates or resets the superadmin user and, optionally,
// seeds a demo tenant with fake orders.
//
//	go run ./cmd/seeduser -username admin -password secreto
//	go run ./cmd/seeduser -demo 50
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"pasteleria/internal/config"
	"pasteleria/internal/dto"
	"pasteleria/internal/infra"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"
	"pasteleria/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	sabores  = []string{"Chocolate", "Vainilla", "Fresa", "Red velvet", "Zanahoria", "Tres leches"}
	rellenos = []string{"Cajeta", "Nutella", "Crema pastelera", "Mermelada de fresa", "Queso crema"}
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "superadmin username")
	password := flag.String("password", "", "superadmin password (required)")
	nombre := flag.String("nombre", "Administrador", "display name")
	demo := flag.Int("demo", 0, "create a demo tenant with N fake folios")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	ctx := context.Background()

	if *password != "" {
		if err := upsertSuperadmin(ctx, db, *username, *nombre, *password); err != nil {
			log.Fatal().Err(err).Msg("failed to create superadmin")
		}
		fmt.Printf("Usuario '%s' creado/actualizado\n", *username)
	} else if *demo == 0 {
		log.Fatal().Msg("-password is required unless only -demo is used")
	}

	if *demo > 0 {
		tenant, err := seedDemo(ctx, db, cfg, *demo)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		fmt.Printf("Tenant demo %s con %d folios (usuario demo@pasteleria / demo1234)\n", tenant, *demo)
	}
}

func upsertSuperadmin(ctx context.Context, db *gorm.DB, username, nombre, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	repo := repository.NewUsuarioRepository(db)
	// Inactive rows count too: the username is unique.
	u := &model.Usuario{}
	err = db.WithContext(ctx).Where("username = ?", username).First(u).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	u.Username = username
	u.Nombre = nombre
	u.PasswordHash = string(hash)
	u.Rol = string(scope.RolSuperAdmin)
	u.TenantID = nil
	u.Activo = true
	if u.ID == uuid.Nil {
		return repo.Create(ctx, u)
	}
	return repo.Update(ctx, u)
}

func seedDemo(ctx context.Context, db *gorm.DB, cfg *config.Config, n int) (uuid.UUID, error) {
	tenant := uuid.New()
	faker := gofakeit.New(0)
	loc := cfg.Location()

	usuarios := repository.NewUsuarioRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), 12)
	if err != nil {
		return uuid.Nil, err
	}
	admin := &model.Usuario{
		TenantID:     &tenant,
		Username:     "demo@pasteleria",
		Nombre:       "Encargada Demo",
		PasswordHash: string(hash),
		Rol:          string(scope.RolAdmin),
		Activo:       true,
	}
	if err := usuarios.Create(ctx, admin); err != nil {
		return uuid.Nil, fmt.Errorf("usuario demo: %w", err)
	}

	filtro := scope.Tenant(tenant)
	catalogos := service.NewCatalogoService(repository.NewCatalogoRepository(db))
	for _, s := range sabores {
		if _, err := catalogos.Crear(ctx, filtro, model.CatalogoSabor, dto.CrearCatalogoRequest{Nombre: s}); err != nil {
			return uuid.Nil, err
		}
	}
	for _, r := range rellenos {
		if _, err := catalogos.Crear(ctx, filtro, model.CatalogoRelleno, dto.CrearCatalogoRequest{Nombre: r}); err != nil {
			return uuid.Nil, err
		}
	}

	auditoria := service.NewAuditoriaService(repository.NewAuditoriaRepository(db))
	comisiones := service.NewComisionService(repository.NewComisionRepository(db), cfg.Tasa(), loc)
	efectos := service.NewEfectos(repository.NewOutboxRepository(db), comisiones, auditoria, nil)
	folios := service.NewFolioService(
		repository.NewFolioRepository(db),
		repository.NewSecuenciaRepository(db),
		repository.NewClienteRepository(db),
		repository.NewCatalogoRepository(db),
		comisiones, efectos, cfg.FolioPrefijo, loc,
	)

	actor := &scope.Identidad{UsuarioID: admin.ID, Rol: scope.RolAdmin, TenantID: &tenant}
	hoy := time.Now().In(loc)
	costosEnvio := []float64{0, 0, 80, 120, 150}
	proporcionesAnticipo := []float64{0, 0.3, 0.5, 1}
	for i := 0; i < n; i++ {
		base := faker.Price(350, 2500)
		req := dto.CrearFolioRequest{
			ClienteNombre:   faker.Name(),
			ClienteTelefono: faker.Phone(),
			FechaEntrega:    hoy.AddDate(0, 0, faker.Number(-3, 21)).Format("2006-01-02"),
			HoraEntrega:     fmt.Sprintf("%02d:%02d", faker.Number(9, 19), faker.RandomInt([]int{0, 15, 30, 45})),
			CostoBase:       dto.ImporteDe(fmt.Sprintf("%.2f", base)),
			CostoEnvio:      dto.ImporteDe(fmt.Sprintf("%.2f", costosEnvio[faker.IntN(len(costosEnvio))])),
			Anticipo:        dto.ImporteDe(fmt.Sprintf("%.2f", base*proporcionesAnticipo[faker.IntN(len(proporcionesAnticipo))])),
			AplicarComision: faker.Bool(),
			Sabores:         []string{faker.RandomString(sabores)},
			Rellenos:        []string{faker.RandomString(rellenos)},
			Diseno:          faker.Sentence(6),
		}
		if _, err := folios.Crear(ctx, actor, filtro, req); err != nil {
			return uuid.Nil, fmt.Errorf("folio %d: %w", i+1, err)
		}
	}
	return tenant, nil
}
