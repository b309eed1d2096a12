package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/growgram/growgram-api/internal/domain/entity"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Operational repair tool. Two jobs:
//
//	-force N          clean a dirty migration state by forcing version N
//	-recompute-tiers  rewrite drifted age_tier columns from the raw fields
//
// Connection comes from DATABASE_* env vars, matching the API server.
func main() {
	forceVersion := flag.Int("force", -1, "force migration version to clean dirty state")
	recomputeTiers := flag.Bool("recompute-tiers", false, "recompute cached age_tier columns")
	flag.Parse()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DATABASE_HOST", "localhost"),
		envOr("DATABASE_PORT", "5432"),
		envOr("DATABASE_USER", "postgres"),
		os.Getenv("DATABASE_PASSWORD"),
		envOr("DATABASE_DBNAME", "growgram_db"),
		envOr("DATABASE_SSLMODE", "disable"),
	)

	if *forceVersion >= 0 {
		forceMigrationVersion(connStr, *forceVersion)
	}

	if *recomputeTiers {
		recomputeAgeTiers(connStr)
	}

	if *forceVersion < 0 && !*recomputeTiers {
		flag.Usage()
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func forceMigrationVersion(connStr string, version int) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Forcing migration version to %d to clean dirty state...\n", version)
	if err := m.Force(version); err != nil {
		log.Fatalf("Failed to force version: %v", err)
	}
	fmt.Println("Success! Dirty state cleaned. You can now run the app normally.")
}

// recomputeAgeTiers walks every user and rewrites the cached age_tier column
// where it drifted from the derivation. The server self-heals on access; this
// fixes the long tail of dormant accounts in one pass.
func recomputeAgeTiers(connStr string) {
	db, err := gorm.Open(gormPostgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal(err)
	}

	now := time.Now()
	var users []entity.User
	var repaired int

	err = db.FindInBatches(&users, 500, func(tx *gorm.DB, batch int) error {
		for i := range users {
			u := &users[i]
			computed := u.ComputeTier(now)
			if u.AgeTier == computed {
				continue
			}
			res := tx.Model(&entity.User{}).Where("id = ?", u.ID).
				Updates(map[string]interface{}{"age_tier": computed, "updated_at": now})
			if res.Error != nil {
				return res.Error
			}
			log.Printf("user %d: %s -> %s", u.ID, u.AgeTier, computed)
			repaired++
		}
		return nil
	}).Error
	if err != nil {
		log.Fatalf("Tier recompute failed: %v", err)
	}

	fmt.Printf("Done. %d users repaired.\n", repaired)
}
