package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alqalam-institute/registry-api/pkg/config"
	"github.com/alqalam-institute/registry-api/pkg/database"
)

// Bulk-loads students from a CSV export. Expected header:
// registration_id,full_name,email,department_code,mother_name,phone
// Rows whose registration ID already exists are skipped. The initial
// password is the registration ID, hashed with bcrypt.
func main() {
	var path string
	flag.StringVar(&path, "file", "", "Path to the students CSV file")
	flag.Parse()

	if path == "" {
		log.Fatal("usage: import-students -file students.csv")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open file: %v", err)
	}
	defer f.Close()

	ctx := context.Background()
	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		log.Fatalf("failed to read header: %v", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"registration_id", "full_name", "email", "department_code"} {
		if _, ok := col[required]; !ok {
			log.Fatalf("missing required column %q", required)
		}
	}

	departments := map[string]string{}
	rows, err := db.QueryxContext(ctx, `SELECT id, code FROM departments`)
	if err != nil {
		log.Fatalf("failed to load departments: %v", err)
	}
	for rows.Next() {
		var id, code string
		if err := rows.Scan(&id, &code); err != nil {
			log.Fatalf("failed to scan department: %v", err)
		}
		departments[strings.ToUpper(code)] = id
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("failed to read departments: %v", err)
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var imported, skipped int
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Fatalf("line %d: %v", line, err)
		}

		registrationID := field(record, "registration_id")
		departmentCode := strings.ToUpper(field(record, "department_code"))
		departmentID, ok := departments[departmentCode]
		if !ok {
			log.Fatalf("line %d: unknown department code %q", line, departmentCode)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(registrationID), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("line %d: failed to hash password: %v", line, err)
		}

		res, err := db.ExecContext(ctx,
			`INSERT INTO students (id, registration_id, full_name, email, department_id, mother_name, phone, password_hash)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (registration_id) DO NOTHING`,
			uuid.NewString(),
			registrationID,
			field(record, "full_name"),
			strings.ToLower(field(record, "email")),
			departmentID,
			field(record, "mother_name"),
			field(record, "phone"),
			string(hash),
		)
		if err != nil {
			log.Fatalf("line %d: insert failed: %v", line, err)
		}
		affected, _ := res.RowsAffected()
		if affected > 0 {
			imported++
		} else {
			skipped++
		}
	}

	fmt.Printf("imported %d students, skipped %d existing\n", imported, skipped)
}
