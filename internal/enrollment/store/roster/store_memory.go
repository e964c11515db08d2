package roster

import (
	"context"
	"sync"

	"enrolld/internal/enrollment/models"
	"enrolld/pkg/platform/sentinel"
)

// Course is one roster document: a course and its active members.
type Course struct {
	Name    string
	Members []Member
}

// Member is a nested roster entry.
type Member struct {
	RegistrationNumber string
	FullName           string
}

// InMemory implements the roster lookup over a fixed course list.
type InMemory struct {
	mu      sync.RWMutex
	courses []Course
}

// NewInMemory creates a roster store seeded with the given courses.
func NewInMemory(courses ...Course) *InMemory {
	return &InMemory{courses: courses}
}

func (s *InMemory) FindByRegistrationNumber(ctx context.Context, number string) (*models.StudentIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, course := range s.courses {
		for _, member := range course.Members {
			if member.RegistrationNumber == number {
				return &models.StudentIdentity{
					RegistrationNumber: member.RegistrationNumber,
					FullName:           member.FullName,
					CourseName:         course.Name,
				}, nil
			}
		}
	}
	return nil, sentinel.ErrNotFound
}
