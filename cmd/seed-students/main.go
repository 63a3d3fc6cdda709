package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sekolahkita/siakad-backend/internal/config"
	"github.com/sekolahkita/siakad-backend/internal/database"
	"github.com/sekolahkita/siakad-backend/internal/logger"
	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/repository"
	"github.com/sekolahkita/siakad-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	yearRepo := repository.NewAcademicYearRepository(pool)
	classroomRepo := repository.NewClassroomRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	classroomService := service.NewClassroomService(classroomRepo)
	studentService := service.NewStudentService(studentRepo)

	fmt.Println("=== Seeding 50 Students ===")

	yearName := "2025/2026"
	className := "XII IPA 2"

	// Find or create the academic year.
	var yearID int
	var existingYear model.AcademicYear
	err = pool.QueryRow(ctx, "SELECT id, name FROM academic_years WHERE name = $1", yearName).
		Scan(&existingYear.ID, &existingYear.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			fmt.Printf("Academic year %s not found. Creating it...\n", yearName)
			newYear := &model.AcademicYear{Name: yearName}
			if err := yearRepo.Create(ctx, newYear); err != nil {
				log.Fatal().Err(err).Msg("Failed to create academic year")
			}
			if err := yearRepo.Activate(ctx, newYear.ID); err != nil {
				log.Fatal().Err(err).Msg("Failed to activate academic year")
			}
			yearID = newYear.ID
			fmt.Printf("Created academic year with ID: %d\n", yearID)
		} else {
			log.Fatal().Err(err).Msg("Failed to check existing academic year")
		}
	} else {
		yearID = existingYear.ID
		fmt.Printf("Found existing academic year with ID: %d\n", yearID)
	}

	// Find or create the classroom.
	var classID int
	var existingClass model.Classroom
	err = pool.QueryRow(ctx, "SELECT id, name FROM classrooms WHERE name = $1 AND academic_year_id = $2", className, yearID).
		Scan(&existingClass.ID, &existingClass.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			fmt.Printf("Classroom %s not found. Creating it...\n", className)
			newClass := &model.Classroom{
				Name:           className,
				AcademicYearID: yearID,
			}
			if err := classroomService.Create(ctx, newClass); err != nil {
				log.Fatal().Err(err).Msg("Failed to create classroom")
			}
			classID = newClass.ID
			fmt.Printf("Created classroom with ID: %d\n", classID)
		} else {
			log.Fatal().Err(err).Msg("Failed to check existing classroom")
		}
	} else {
		classID = existingClass.ID
		fmt.Printf("Found existing classroom with ID: %d\n", classID)
	}

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
		"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
		"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
		"Rafi Ahmad", "Siska Saraswati", "Toni Setiawan", "Umi Kalsum", "Vina Panduwinata",
		"Wahyu Hidayat", "Xena Maharani", "Yudi Pratama", "Zaki Anwar", "Alifia Zahra",
		"Bagas Saputra", "Citra Kirana", "Dimas Anggara", "Elisa Novita", "Fikri Maulana",
		"Gali Rakasiwi", "Hani Hanifah", "Iqbal Ramadhan", "Jasmine Azzahra", "Kevin Sanjaya",
		"Larasati Dewi", "Miko Pambudi", "Nia Ramadhani", "Oscar Lawalata", "Puput Melati",
		"Reza Rahadian", "Sari Nila", "Tigor Siahaan", "Utari Maharani", "Vicky Prasetyo",
	}

	successCount := 0
	for i := 0; i < 50; i++ {
		student := &model.Student{
			NIS:     fmt.Sprintf("%05d", i+1),
			Name:    names[i],
			Gender:  model.GenderMale,
			ClassID: classID,
		}

		// If i % 2 == 1, assign as Perempuan
		if i%2 != 0 {
			student.Gender = model.GenderFemale
		}

		err := studentService.Create(ctx, student)
		if err != nil {
			fmt.Printf("Error creating student %s (NIS: %s): %v\n", student.Name, student.NIS, err)
		} else {
			successCount++
			if (i+1)%10 == 0 {
				fmt.Printf("Created %d students...\n", i+1)
			}
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/50 students.\n", successCount)
}
