package main

import (
	"log"
	"time"

	"filmverse/internal/database"
	"filmverse/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local SQLite database with a demo account and a few favorites so
// the front end has something to render right after checkout.
func main() {
	db, err := database.Connect("filmverse.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM film_notes")
	db.Exec("DELETE FROM favorites")
	db.Exec("DELETE FROM users")

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	user := &domain.User{
		Email:        "fan@example.com",
		PasswordHash: string(hash),
		Name:         "Demo Fan",
	}
	if err := db.Create(user).Error; err != nil {
		log.Fatal("failed to create demo user:", err)
	}

	theories := "The post-credits scene sets up the next phase."
	favorites := []domain.Favorite{
		{
			UserID:          user.ID,
			FilmID:          969681,
			FilmTitle:       "Spider-Man: Brand New Day",
			FilmReleaseDate: mustDate("2026-07-31"),
			FilmType:        "Movie",
			Theories:        &theories,
		},
		{
			UserID:          user.ID,
			FilmID:          1003596,
			FilmTitle:       "Avengers: Doomsday",
			FilmReleaseDate: mustDate("2026-12-18"),
			FilmType:        "Movie",
		},
	}
	for i := range favorites {
		if err := db.Create(&favorites[i]).Error; err != nil {
			log.Fatal("failed to create favorite:", err)
		}
	}

	note := &domain.FilmNote{
		UserID:   user.ID,
		FilmID:   969681,
		NoteText: "Rewatch the previous trilogy before release day.",
		NoteType: domain.NoteTypeNote,
	}
	if err := db.Create(note).Error; err != nil {
		log.Fatal("failed to create note:", err)
	}

	log.Printf("Seeded: user=%s favorites=%d", user.Email, len(favorites))
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Fatal(err)
	}
	return t
}
