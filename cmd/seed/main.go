package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"sprintdesk/config"
	"sprintdesk/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@sprintdesk.local"
	password := "password123"
	username := "admin"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, username, password_hash, full_name, role, is_active, email_verified)
		VALUES ($1, $2, $3, $4, 'ADMIN', TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, email, username, hash, "SprintDesk Admin").Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", userID, email, password)

	var projectID string
	err = db.QueryRow(`
		INSERT INTO projects (name, key, description, owner_id)
		VALUES ('Demo Project', 'DEMO', 'Seeded demo project', $1)
		ON CONFLICT (key) DO UPDATE SET updated_at = now()
		RETURNING id
	`, userID).Scan(&projectID)
	if err != nil {
		log.Fatalf("failed to seed project: %v", err)
	}
	fmt.Printf("seeded project: id=%s key=DEMO\n", projectID)

	var teamID string
	err = db.QueryRow(`
		INSERT INTO teams (project_id, name)
		VALUES ($1, 'Core Team')
		ON CONFLICT (project_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, projectID).Scan(&teamID)
	if err != nil {
		log.Fatalf("failed to seed team: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO team_members (team_id, user_id, team_role)
		VALUES ($1, $2, 'ADMIN')
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID); err != nil {
		log.Fatalf("failed to seed team member: %v", err)
	}
	fmt.Printf("seeded team: id=%s with admin member\n", teamID)
}
