package db

import (
	"fmt"

	"github.com/pdxmph/addressbook/internal/contact"
	"go.uber.org/zap"
)

// Fixtures is the sample data seeded by CreateFixturesDatabase
var Fixtures = []contact.Payload{
	{
		Name:    "Sarah Chen",
		Emails:  []string{"sarah.chen@email.com", "schen@techstartup.io"},
		Phone:   "555-0101",
		Address: "12 Alder St, Portland OR",
	},
	{
		Name:   "Marcus Williams",
		Emails: []string{"marcus.w@company.com"},
		Phone:  "555-0102",
	},
	{
		Name:   "Elena Rodriguez",
		Emails: []string{"elena.r@university.edu"},
	},
	// Created before multi-email support
	{
		Name:  "James Park",
		Email: "jpark@consulting.com",
		Phone: "555-0104",
	},
	{
		Name: "Aisha Okafor",
	},
}

// CreateFixturesDatabase creates a test database with realistic sample data
func CreateFixturesDatabase(dbPath string, log *zap.Logger) error {
	// Initialize empty database
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	// Open database to add test data
	database, err := Open(dbPath, log)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	for _, p := range Fixtures {
		if _, err := database.AddContact(FromPayload("", p)); err != nil {
			return fmt.Errorf("adding fixture contact %s: %w", p.Name, err)
		}
	}

	return nil
}
