package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/bookings"
	"github.com/JasonDebnath001/QuickTix-server/internal/catalog"
	"github.com/JasonDebnath001/QuickTix-server/internal/release"
	"github.com/JasonDebnath001/QuickTix-server/internal/seats"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"
	"github.com/JasonDebnath001/QuickTix-server/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting QuickTix Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg,
		&users.User{},
		&shows.Movie{},
		&shows.Show{},
		&users.Favorite{},
		&bookings.Booking{},
		&release.Task{},
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables, children first.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"release_tasks",
		"bookings",
		"user_favorites",
		"shows",
		"movies",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	movieIDs, err := s.SeedMovies()
	if err != nil {
		return fmt.Errorf("failed to seed movies: %w", err)
	}

	showIDs, err := s.SeedShows(movieIDs)
	if err != nil {
		return fmt.Errorf("failed to seed shows: %w", err)
	}

	if err := s.SeedBookings(userIDs["user1"], showIDs[0]); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	// cached seat maps would be stale after the truncate
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates 3 users: 1 admin and 2 regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@quicktix.dev", users.RoleAdmin},
		{"user1", "Jason", "Debnath", "jason@quicktix.dev", users.RoleUser},
		{"user2", "Riya", "Sen", "riya@quicktix.dev", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedMovies stores a couple of catalog entries so shows can be added
// without calling TMDB.
func (s *Seeder) SeedMovies() ([]string, error) {
	fmt.Println("  🎬 Seeding movies...")

	details := []catalog.MovieDetails{
		{
			ID:               "550",
			Title:            "Fight Club",
			Overview:         "An insomniac office worker and a soap maker form an underground fight club.",
			PosterPath:       "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg",
			ReleaseDate:      "1999-10-15",
			OriginalLanguage: "en",
			Genres:           []catalog.Genre{{ID: 18, Name: "Drama"}},
			VoteAverage:      8.4,
			Runtime:          139,
		},
		{
			ID:               "27205",
			Title:            "Inception",
			Overview:         "A thief who steals corporate secrets through dream-sharing technology.",
			PosterPath:       "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg",
			ReleaseDate:      "2010-07-15",
			OriginalLanguage: "en",
			Genres:           []catalog.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
			VoteAverage:      8.4,
			Runtime:          148,
		},
	}

	ids := make([]string, 0, len(details))
	for i := range details {
		movie := shows.NewMovieFromCatalog(&details[i])
		if err := s.db.PostgreSQL.Create(movie).Error; err != nil {
			return nil, fmt.Errorf("failed to create movie %s: %w", movie.Title, err)
		}
		ids = append(ids, movie.ID)
		fmt.Printf("    ✅ Created movie: %s\n", movie.Title)
	}
	return ids, nil
}

// SeedShows schedules two evening shows per movie for the next three days.
func (s *Seeder) SeedShows(movieIDs []string) ([]uuid.UUID, error) {
	fmt.Println("  🕒 Seeding shows...")

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var ids []uuid.UUID
	for _, movieID := range movieIDs {
		for day := 1; day <= 3; day++ {
			for _, hour := range []int{18, 21} {
				show := shows.Show{
					ID:            uuid.New(),
					MovieID:       movieID,
					ShowDateTime:  today.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour),
					ShowPrice:     12.5,
					OccupiedSeats: seats.SeatMap{},
				}
				if err := s.db.PostgreSQL.Create(&show).Error; err != nil {
					return nil, fmt.Errorf("failed to create show for %s: %w", movieID, err)
				}
				ids = append(ids, show.ID)
			}
		}
		fmt.Printf("    ✅ Created 6 shows for movie %s\n", movieID)
	}
	return ids, nil
}

// SeedBookings records one paid booking so the dashboard has data.
func (s *Seeder) SeedBookings(userID, showID uuid.UUID) error {
	fmt.Println("  🎟️  Seeding bookings...")

	picked := []string{"C4", "C5"}
	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		var show shows.Show
		if err := tx.First(&show, "id = ?", showID).Error; err != nil {
			return err
		}
		if err := show.OccupiedSeats.Claim(picked, userID.String()); err != nil {
			return err
		}
		if err := tx.Model(&show).Update("occupied_seats", show.OccupiedSeats).Error; err != nil {
			return err
		}

		booking := bookings.Booking{
			ID:          uuid.New(),
			UserID:      userID,
			ShowID:      showID,
			Amount:      show.ShowPrice * float64(len(picked)),
			BookedSeats: picked,
			IsPaid:      true,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		fmt.Printf("    ✅ Created paid booking %s (%v)\n", booking.ID, picked)
		return nil
	})
}
