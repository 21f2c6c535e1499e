package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
)

// Fixtures is the YAML document accepted by `migrate seed --file`.
type Fixtures struct {
	Users      []UserFixture     `yaml:"users"`
	Vendors    []VendorFixture   `yaml:"vendors"`
	Properties []PropertyFixture `yaml:"properties"`
}

type UserFixture struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type VendorFixture struct {
	Name    string  `yaml:"name"`
	Company string  `yaml:"company"`
	Trade   string  `yaml:"trade"`
	Email   string  `yaml:"email"`
	Phone   string  `yaml:"phone"`
	Rating  float64 `yaml:"rating"`
}

type PropertyFixture struct {
	Name        string             `yaml:"name"`
	Address     string             `yaml:"address"`
	City        string             `yaml:"city"`
	State       string             `yaml:"state"`
	Status      string             `yaml:"status"`
	TotalBudget float64            `yaml:"total_budget"`
	OwnerEmail  string             `yaml:"owner_email"`
	Members     []MemberFixture    `yaml:"members"`
	Milestones  []MilestoneFixture `yaml:"milestones"`
}

type MemberFixture struct {
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type MilestoneFixture struct {
	Title    string     `yaml:"title"`
	Status   string     `yaml:"status"`
	DueDate  *time.Time `yaml:"due_date"`
	Progress int        `yaml:"progress"`
}

const defaultFixtures = `
users:
  - {email: owner@buildtrack.local, first_name: Olivia, last_name: Owner, role: owner}
  - {email: pm@buildtrack.local, first_name: Pat, last_name: Manager, role: pm}
  - {email: crew@buildtrack.local, first_name: Casey, last_name: Crew, role: team_member}
vendors:
  - {name: Dana Ruiz, company: Ruiz Electric, trade: electrical, email: dana@ruiz.example, rating: 4.6}
  - {name: Sam Cole, company: Cole Plumbing, trade: plumbing, email: sam@cole.example, rating: 4.2}
  - {name: Lee Park, company: Park Framing, trade: framing, rating: 4.8}
properties:
  - name: Maple Street Duplex
    address: 120 Maple Street
    city: Portland
    state: OR
    status: active
    total_budget: 450000
    owner_email: owner@buildtrack.local
    members:
      - {email: pm@buildtrack.local, role: pm}
      - {email: crew@buildtrack.local, role: team_member}
    milestones:
      - {title: Foundation, status: completed, progress: 100}
      - {title: Framing, status: in_progress, progress: 40}
      - {title: Rough-in inspections, status: pending}
`

func loadFixtures(path string) (*Fixtures, error) {
	data := []byte(defaultFixtures)
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading fixtures: %w", err)
		}
	}

	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	return &fixtures, nil
}

// seedDatabase inserts the fixtures; rows that already exist are left as they are.
func seedDatabase(db *database.DB, fixtures *Fixtures) error {
	log.Info("Seeding database...")

	return db.Transaction(func(tx *gorm.DB) error {
		users := make(map[string]*models.User, len(fixtures.Users))
		for _, f := range fixtures.Users {
			email := strings.ToLower(strings.TrimSpace(f.Email))
			user := &models.User{
				Email:     email,
				FirstName: f.FirstName,
				LastName:  f.LastName,
				Role:      models.UserRole(orDefault(f.Role, string(models.UserRoleTeamMember))),
				IsActive:  true,
			}
			if err := tx.Where(models.User{Email: email}).FirstOrCreate(user).Error; err != nil {
				return fmt.Errorf("seeding user %s: %w", email, err)
			}
			users[email] = user
		}

		for _, f := range fixtures.Vendors {
			vendor := &models.Vendor{
				Name:    f.Name,
				Company: f.Company,
				Trade:   f.Trade,
				Email:   f.Email,
				Phone:   f.Phone,
				Rating:  f.Rating,
				Status:  models.VendorActive,
			}
			if err := tx.Where(models.Vendor{Name: f.Name, Company: f.Company}).FirstOrCreate(vendor).Error; err != nil {
				return fmt.Errorf("seeding vendor %s: %w", f.Name, err)
			}
		}

		for _, f := range fixtures.Properties {
			owner, ok := users[strings.ToLower(f.OwnerEmail)]
			if !ok {
				return fmt.Errorf("property %s: owner %s is not a seeded user", f.Name, f.OwnerEmail)
			}

			property := &models.Property{
				Name:        f.Name,
				Address:     f.Address,
				City:        f.City,
				State:       f.State,
				Status:      models.PropertyStatus(orDefault(f.Status, string(models.PropertyPlanning))),
				TotalBudget: f.TotalBudget,
				OwnerID:     owner.ID,
			}
			if err := tx.Where(models.Property{Name: f.Name, OwnerID: owner.ID}).FirstOrCreate(property).Error; err != nil {
				return fmt.Errorf("seeding property %s: %w", f.Name, err)
			}

			members := append([]MemberFixture{{Email: f.OwnerEmail, Role: string(models.UserRoleOwner)}}, f.Members...)
			for _, m := range members {
				user, ok := users[strings.ToLower(m.Email)]
				if !ok {
					return fmt.Errorf("property %s: member %s is not a seeded user", f.Name, m.Email)
				}
				member := &models.PropertyMember{PropertyID: property.ID, UserID: user.ID, Role: models.UserRole(m.Role)}
				if err := tx.Where(models.PropertyMember{PropertyID: property.ID, UserID: user.ID}).FirstOrCreate(member).Error; err != nil {
					return fmt.Errorf("seeding member %s: %w", m.Email, err)
				}
			}

			for i, ms := range f.Milestones {
				milestone := &models.Milestone{
					PropertyID: property.ID,
					Title:      ms.Title,
					Status:     models.MilestoneStatus(orDefault(ms.Status, string(models.MilestonePending))),
					DueDate:    ms.DueDate,
					Progress:   ms.Progress,
					SortOrder:  i,
				}
				if err := tx.Where(models.Milestone{PropertyID: property.ID, Title: ms.Title}).FirstOrCreate(milestone).Error; err != nil {
					return fmt.Errorf("seeding milestone %s: %w", ms.Title, err)
				}
			}
		}

		log.Info("Database seeding completed successfully",
			"users", len(fixtures.Users),
			"vendors", len(fixtures.Vendors),
			"properties", len(fixtures.Properties),
		)
		return nil
	})
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
