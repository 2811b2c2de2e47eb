package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"calbook/internal/config"
	"calbook/internal/database"
	"calbook/internal/domain"
	"calbook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data in FK-safe order.
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM attendees")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM event_types")
	db.Exec("DELETE FROM teams")
	db.Exec("DELETE FROM oauth_clients")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	eventTypes := repository.NewEventTypeRepository(db)
	clients := repository.NewOAuthClientRepository(db)

	log.Println("Creating users...")
	alice := domain.User{Username: "alice", Email: "alice@example.com", Name: "Alice Carter", Locale: "en"}
	if err := users.Create(ctx, &alice); err != nil {
		log.Fatal(err)
	}
	bob := domain.User{Username: "bob", Email: "bob@example.com", Name: "Bob Ruiz", Locale: "es"}
	if err := users.Create(ctx, &bob); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating team...")
	sales := domain.Team{Slug: "sales", Name: "Sales"}
	if err := eventTypes.CreateTeam(ctx, &sales); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating event types...")
	intro := domain.EventType{
		Slug:    "intro-call",
		Title:   "Intro Call",
		Length:  30,
		OwnerID: &alice.ID,
	}
	if err := eventTypes.Create(ctx, &intro); err != nil {
		log.Fatal(err)
	}

	count := 6
	weekly := domain.EventType{
		Slug:    "weekly-sync",
		Title:   "Weekly Sync",
		Length:  45,
		OwnerID: &alice.ID,
		Recurrence: &domain.RecurrenceRule{
			Freq:     domain.FreqWeekly,
			Interval: 1,
			Count:    &count,
		},
	}
	if err := eventTypes.Create(ctx, &weekly); err != nil {
		log.Fatal(err)
	}

	teamDemo := domain.EventType{
		Slug:           "team-demo",
		Title:          "Team Demo",
		Length:         60,
		TeamID:         &sales.ID,
		SchedulingType: domain.SchedulingRoundRobin,
	}
	if err := eventTypes.Create(ctx, &teamDemo); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating OAuth client...")
	secretHash, err := bcrypt.GenerateFromPassword([]byte("platform-secret"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	bookingURL := "https://platform.example.com/booked"
	cancelURL := "https://platform.example.com/cancelled"
	rescheduleURL := "https://platform.example.com/rescheduled"
	client := domain.OAuthClient{
		ID:                    uuid.NewString(),
		Name:                  "Demo Platform",
		SecretHash:            string(secretHash),
		BookingRedirectURI:    &bookingURL,
		CancelRedirectURI:     &cancelURL,
		RescheduleRedirectURI: &rescheduleURL,
		AreEmailsEnabled:      true,
	}
	if err := clients.Create(ctx, &client); err != nil {
		log.Fatal(err)
	}

	log.Println("Seed complete.")
	log.Println("OAuth client id:", client.ID)
}
