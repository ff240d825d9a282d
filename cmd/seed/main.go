package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/repository"
	"github.com/noah-isme/blood-donation-api/pkg/config"
	"github.com/noah-isme/blood-donation-api/pkg/database"
	"github.com/noah-isme/blood-donation-api/pkg/logger"
)

type seeder struct {
	faker     *gofakeit.Faker
	hash      string
	log       *zap.Logger
	donors    *repository.DonorRepository
	hospitals *repository.HospitalRepository
	admins    *repository.HospitalAdminRepository
	managers  *repository.ManagerRepository
	inventory *repository.InventoryRepository
}

func main() {
	hospitalCount := flag.Int("hospitals", 3, "number of hospitals to create")
	donorCount := flag.Int("donors", 50, "number of donors to create")
	password := flag.String("password", "Password123!", "password assigned to every seeded account")
	seed := flag.Uint64("seed", 0, "faker seed (0 picks a random one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.Database.AutoMigrate {
		if _, err := database.ApplyMigrations(ctx, db, cfg.Database.MigrationsDir); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}

	s := &seeder{
		faker:     gofakeit.New(*seed),
		hash:      string(hash),
		log:       log,
		donors:    repository.NewDonorRepository(db),
		hospitals: repository.NewHospitalRepository(db),
		admins:    repository.NewHospitalAdminRepository(db),
		managers:  repository.NewManagerRepository(db),
		inventory: repository.NewInventoryRepository(db),
	}

	log.Info("seed starting", zap.Int("hospitals", *hospitalCount), zap.Int("donors", *donorCount))
	if err := s.seedManager(ctx); err != nil {
		log.Fatal("seed manager", zap.Error(err))
	}
	for i := 0; i < *hospitalCount; i++ {
		if err := s.seedHospital(ctx, i); err != nil {
			log.Fatal("seed hospital", zap.Int("index", i), zap.Error(err))
		}
	}
	if err := s.seedDonors(ctx, *donorCount); err != nil {
		log.Fatal("seed donors", zap.Error(err))
	}
	log.Info("seed complete")
}

func (s *seeder) seedManager(ctx context.Context) error {
	manager := &models.Manager{
		Email:        "manager@blooddonation.local",
		PasswordHash: s.hash,
		FullName:     s.faker.Name(),
		Phone:        s.faker.Phone(),
		Active:       true,
	}
	if err := s.managers.Create(ctx, manager); err != nil {
		return err
	}
	s.log.Info("manager created", zap.String("email", manager.Email))
	return nil
}

func (s *seeder) seedHospital(ctx context.Context, index int) error {
	name := s.faker.Company() + " Hospital"
	hospital := &models.Hospital{
		Email:        fmt.Sprintf("hospital%d@blooddonation.local", index+1),
		PasswordHash: s.hash,
		Name:         name,
		Address:      s.faker.Street(),
		City:         s.faker.City(),
		Phone:        s.faker.Phone(),
		Active:       true,
	}
	if err := s.hospitals.Create(ctx, hospital); err != nil {
		return err
	}

	admin := &models.HospitalAdmin{
		HospitalID:   hospital.ID,
		Email:        fmt.Sprintf("admin%d@blooddonation.local", index+1),
		PasswordHash: s.hash,
		FullName:     s.faker.Name(),
		Phone:        s.faker.Phone(),
		Position:     s.faker.RandomString([]string{"Head Nurse", "Lab Coordinator", "Blood Bank Officer"}),
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, bloodType := range models.AllBloodTypes {
		// one lot per expiry bucket: expired, expiring soon, valid
		for _, days := range []int{-s.faker.IntRange(1, 10), s.faker.IntRange(1, 6), s.faker.IntRange(8, 40)} {
			item := &models.InventoryItem{
				HospitalID:      hospital.ID,
				BloodType:       bloodType,
				AvailableStocks: s.faker.IntRange(1, 25),
				ExpirationDate:  today.AddDate(0, 0, days),
			}
			if err := s.inventory.Create(ctx, item); err != nil {
				return err
			}
		}
	}
	s.log.Info("hospital created", zap.String("name", name), zap.String("admin", admin.Email))
	return nil
}

func (s *seeder) seedDonors(ctx context.Context, count int) error {
	start := time.Now().AddDate(-60, 0, 0)
	end := time.Now().AddDate(-18, 0, 0)
	for i := 0; i < count; i++ {
		birth := s.faker.DateRange(start, end).UTC()
		first, last := s.faker.FirstName(), s.faker.LastName()
		donor := &models.Donor{
			Email:        fmt.Sprintf("%s.%s%d@blooddonation.local", strings.ToLower(first), strings.ToLower(last), i+1),
			PasswordHash: s.hash,
			FirstName:    first,
			LastName:     last,
			BloodType:    models.AllBloodTypes[s.faker.IntRange(0, len(models.AllBloodTypes)-1)],
			Gender:       s.faker.RandomString([]string{"Male", "Female"}),
			BirthDate:    &birth,
			Phone:        s.faker.Phone(),
			Address:      s.faker.Street() + ", " + s.faker.City(),
			Active:       true,
		}
		if err := s.donors.Create(ctx, donor); err != nil {
			return err
		}
	}
	s.log.Info("donors created", zap.Int("count", count))
	return nil
}
