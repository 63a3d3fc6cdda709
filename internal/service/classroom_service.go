package service

import (
	"context"

	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/repository"
)

// ClassroomService handles classroom business logic.
type ClassroomService struct {
	classroomRepo *repository.ClassroomRepository
}

// NewClassroomService creates a new ClassroomService.
func NewClassroomService(classroomRepo *repository.ClassroomRepository) *ClassroomService {
	return &ClassroomService{classroomRepo: classroomRepo}
}

// GetByID retrieves a classroom by its ID.
func (s *ClassroomService) GetByID(ctx context.Context, id int) (*model.Classroom, error) {
	return s.classroomRepo.GetByID(ctx, id)
}

// List retrieves classrooms, optionally filtered by academic year.
func (s *ClassroomService) List(ctx context.Context, academicYearID int) ([]model.Classroom, error) {
	classrooms, err := s.classroomRepo.GetAll(ctx, academicYearID)
	if err != nil {
		return nil, err
	}
	if classrooms == nil {
		classrooms = []model.Classroom{}
	}
	return classrooms, nil
}

// Create creates a new classroom.
func (s *ClassroomService) Create(ctx context.Context, c *model.Classroom) error {
	return s.classroomRepo.Create(ctx, c)
}

// Update modifies an existing classroom.
func (s *ClassroomService) Update(ctx context.Context, c *model.Classroom) error {
	return s.classroomRepo.Update(ctx, c)
}

// Delete removes a classroom. Foreign key constraints on students prevent
// deletion while the classroom is still in use.
func (s *ClassroomService) Delete(ctx context.Context, id int) error {
	return s.classroomRepo.Delete(ctx, id)
}
