package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	service "github.com/serviprohq/servipro-backend/internal/services"
	"github.com/serviprohq/servipro-backend/internal/users"
	"github.com/serviprohq/servipro-backend/pkg/config"
	"github.com/serviprohq/servipro-backend/pkg/db"
	"github.com/serviprohq/servipro-backend/pkg/db/models"
	"github.com/serviprohq/servipro-backend/pkg/enums"
	"github.com/serviprohq/servipro-backend/pkg/logger"
	"github.com/serviprohq/servipro-backend/pkg/security"
)

type seedUser struct {
	name     string
	email    string
	password string
	title    string
	location string
}

type seedService struct {
	ownerEmail  string
	title       string
	description string
	category    enums.ServiceCategory
	price       string
	location    string
}

var seedUsers = []seedUser{
	{name: "María García", email: "maria@example.com", password: "Servipro123!", title: "Desarrolladora full stack", location: "Madrid"},
	{name: "Carlos Rodríguez", email: "carlos@example.com", password: "Servipro123!", title: "Diseñador gráfico", location: "Barcelona"},
	{name: "Lucía Fernández", email: "lucia@example.com", password: "Servipro123!", title: "Consultora de marketing", location: "Valencia"},
}

var seedServices = []seedService{
	{ownerEmail: "maria@example.com", title: "Desarrollo de tiendas online", description: "Creo tiendas online completas con pasarela de pago, panel de administración y diseño adaptado a tu marca.", category: enums.ServiceCategoryWebDevelopment, price: "850.00", location: "Madrid"},
	{ownerEmail: "maria@example.com", title: "Mantenimiento web mensual", description: "Actualizaciones, copias de seguridad y soporte técnico continuo para tu sitio web.", category: enums.ServiceCategoryWebDevelopment, price: "120.00", location: "Madrid"},
	{ownerEmail: "carlos@example.com", title: "Diseño de identidad corporativa", description: "Logotipo, paleta de colores, tipografías y manual de marca para tu negocio.", category: enums.ServiceCategoryGraphicDesign, price: "450.00", location: "Barcelona"},
	{ownerEmail: "carlos@example.com", title: "Ilustraciones personalizadas", description: "Ilustraciones digitales a medida para redes sociales, packaging o editorial.", category: enums.ServiceCategoryGraphicDesign, price: "95.00", location: "Barcelona"},
	{ownerEmail: "lucia@example.com", title: "Auditoría SEO completa", description: "Análisis técnico y de contenidos con plan de acción priorizado para mejorar tu posicionamiento.", category: enums.ServiceCategoryDigitalMarketing, price: "300.00", location: "Valencia"},
	{ownerEmail: "lucia@example.com", title: "Gestión de redes sociales", description: "Planificación, creación de contenido y análisis de resultados para tus perfiles sociales.", category: enums.ServiceCategoryDigitalMarketing, price: "250.00", location: "Valencia"},
	{ownerEmail: "lucia@example.com", title: "Mentoría para emprendedores", description: "Sesiones individuales para validar tu idea de negocio y definir tu estrategia de lanzamiento.", category: enums.ServiceCategoryConsulting, price: "60.00", location: "Valencia"},
	{ownerEmail: "maria@example.com", title: "Clases de programación en Go", description: "Clases particulares online de Go desde cero, con ejercicios prácticos y proyectos reales.", category: enums.ServiceCategoryEducation, price: "35.00", location: "Madrid"},
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if cfg.App.IsProd() {
		logg.Error(ctx, "seeding refused", errors.New("seed is for development environments only"))
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := run(ctx, dbClient, cfg); err != nil {
		logg.Error(ctx, "seeding failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seeding complete")
}

func run(ctx context.Context, dbClient *db.Client, cfg *config.Config) error {
	return dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		serviceRepo := service.NewRepository(tx)

		byEmail := map[string]*models.User{}
		for _, su := range seedUsers {
			existing, err := userRepo.FindByEmail(ctx, su.email)
			if err == nil {
				byEmail[su.email] = existing
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup %s: %w", su.email, err)
			}

			hash, err := security.HashPassword(su.password, cfg.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", su.email, err)
			}
			created, err := userRepo.Create(ctx, users.CreateUserDTO{
				Name:         su.name,
				Email:        su.email,
				PasswordHash: hash,
			})
			if err != nil {
				return fmt.Errorf("create %s: %w", su.email, err)
			}
			title := su.title
			location := su.location
			if err := userRepo.UpdateColumns(ctx, created.ID, map[string]any{
				"title":    title,
				"location": location,
			}); err != nil {
				return fmt.Errorf("update profile for %s: %w", su.email, err)
			}
			byEmail[su.email] = created
		}

		for _, ss := range seedServices {
			owner, ok := byEmail[ss.ownerEmail]
			if !ok {
				return fmt.Errorf("unknown seed owner %s", ss.ownerEmail)
			}
			price, err := decimal.NewFromString(ss.price)
			if err != nil {
				return fmt.Errorf("parse price for %q: %w", ss.title, err)
			}
			location := ss.location
			if _, err := serviceRepo.Create(ctx, &models.Service{
				UserID:      owner.ID,
				Title:       ss.title,
				Description: ss.description,
				Category:    ss.category,
				Price:       price,
				Location:    &location,
			}); err != nil {
				return fmt.Errorf("create service %q: %w", ss.title, err)
			}
		}

		return nil
	})
}
