package config

import (
	"log"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/core/domain"
	"topcoop-lending/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedDemoUsers(); err != nil {
		log.Printf("⚠️ Demo user seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName:  "System",
		LastName:   "Admin",
		Email:      "admin@topcoop.co.th",
		Password:   hashedPassword,
		Role:       string(domain.RoleAdmin),
		IsLoanable: false, // admins don't borrow
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedDemoUsers seeds a handful of loanable members for development
func (s *Seeder) seedDemoUsers() error {
	if AppConfig != nil && AppConfig.IsProd() {
		return nil // never seed demo data in production
	}

	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleUser)).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("password123")
	if err != nil {
		return err
	}

	demos := []*models.User{
		{FirstName: "Anan", LastName: "Srisuk", Email: "anan@example.com", Password: hashedPassword, Role: string(domain.RoleUser), IsLoanable: true},
		{FirstName: "Malee", LastName: "Thong", Email: "malee@example.com", Password: hashedPassword, Role: string(domain.RoleUser), IsLoanable: true},
		{FirstName: "Somchai", LastName: "Prasert", Email: "somchai@example.com", Password: hashedPassword, Role: string(domain.RoleUser), IsLoanable: true},
	}

	if err := s.db.CreateInBatches(demos, len(demos)).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d demo users", len(demos))
	return nil
}
