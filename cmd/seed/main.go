package main

import (
	"educrm-api/pkg/auth"
	"educrm-api/pkg/model"
	"educrm-api/pkg/orm"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type staffFixture struct {
	name     string
	email    string
	role     string
	password string
}

var staffFixtures = []staffFixture{
	{name: "Alice Admin", email: "alice@educrm.local", role: model.RoleAdmin, password: "admin-password"},
	{name: "Bob Staff", email: "bob@educrm.local", role: model.RoleStaff, password: "staff-password"},
	{name: "Carol Staff", email: "carol@educrm.local", role: model.RoleStaff, password: "staff-password"},
}

var contactFixtures = []model.Contact{
	{Name: "Daniel Nguyen", Email: "daniel.nguyen@example.com", Phone: "+61 400 111 222"},
	{Name: "Mei Lin", Email: "mei.lin@example.com", Phone: "+61 400 333 444"},
	{Name: "Priya Sharma", Email: "priya.sharma@example.com", Phone: "+61 400 555 666"},
}

func main() {
	db := orm.GetConnHandler().DB()

	seedStaff(db)
	seedContacts(db)
	log.Info().Msg("Seeding complete")
}

func seedStaff(db *gorm.DB) {
	for _, fixture := range staffFixtures {
		hash, err := auth.HashPassword(fixture.password)
		if err != nil {
			log.Fatal().Err(err).Str("email", fixture.email).Msg("Failed to hash password")
		}
		staff := model.Staff{
			Name:         fixture.name,
			Email:        fixture.email,
			Role:         fixture.role,
			PasswordHash: hash,
		}
		result := db.Where(model.Staff{Email: fixture.email}).FirstOrCreate(&staff)
		if result.Error != nil {
			log.Fatal().Err(result.Error).Str("email", fixture.email).Msg("Failed to seed staff")
		}
		if result.RowsAffected > 0 {
			log.Info().Str("email", fixture.email).Str("role", fixture.role).Msg("Created staff member")
		} else {
			log.Info().Str("email", fixture.email).Msg("Staff member already exists, skipping")
		}
	}
}

func seedContacts(db *gorm.DB) {
	for _, fixture := range contactFixtures {
		contact := fixture
		result := db.Where(model.Contact{Email: fixture.Email}).FirstOrCreate(&contact)
		if result.Error != nil {
			log.Fatal().Err(result.Error).Str("email", fixture.Email).Msg("Failed to seed contact")
		}
		if result.RowsAffected > 0 {
			log.Info().Str("name", fixture.Name).Msg("Created contact")
		}
	}
}
