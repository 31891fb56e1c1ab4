package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tinkertanker/bitvibe-extension/auth"
	"github.com/tinkertanker/bitvibe-extension/models"
)

// Store is the repository consumed by the authorization engine and the
// HTTP handlers. Find methods return (nil, nil) when no row matches so
// callers can map "not found" into their own error taxonomy.
type Store interface {
	CreateClassroom(ctx context.Context, name string, requestLimit, maxStudents int) (*models.Classroom, string, error)
	FindClassroomByID(ctx context.Context, id uint) (*models.Classroom, error)
	FindClassroomByTeacherHash(ctx context.Context, hash string) (*models.Classroom, error)
	FindClassroomByJoinCode(ctx context.Context, code string) (*models.Classroom, error)
	UpdateClassroom(ctx context.Context, id uint, updates map[string]any) (bool, error)

	CountActiveStudents(ctx context.Context, classroomID uint) (int64, error)
	CreateStudent(ctx context.Context, classroomID uint, displayName string) (*models.Student, string, error)
	FindStudentByHash(ctx context.Context, hash string) (*models.Student, error)
	ListStudents(ctx context.Context, classroomID uint) ([]models.Student, error)

	// ConsumeQuota performs the check-then-increment as one conditional
	// UPDATE. It returns false when the student is missing, inactive, or
	// already at the limit; of two concurrent calls at the last slot
	// exactly one succeeds.
	ConsumeQuota(ctx context.Context, studentID uint, limit int) (bool, error)
	DeactivateStudent(ctx context.Context, studentID, classroomID uint) (bool, error)
	ResetUsage(ctx context.Context, classroomID uint) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// createRetries bounds regeneration when a fresh join code or token hash
// collides with an existing unique index entry.
const createRetries = 5

func (s *gormStore) CreateClassroom(ctx context.Context, name string, requestLimit, maxStudents int) (*models.Classroom, string, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		code, err := auth.NewJoinCode()
		if err != nil {
			return nil, "", err
		}
		rawToken, err := auth.NewToken()
		if err != nil {
			return nil, "", err
		}
		rec := models.Classroom{
			Name:             name,
			JoinCode:         code,
			TeacherTokenHash: auth.HashToken(rawToken),
			RequestLimit:     requestLimit,
			MaxStudents:      maxStudents,
			Active:           true,
		}
		err = s.db.WithContext(ctx).Create(&rec).Error
		if err == nil {
			return &rec, rawToken, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("store: could not mint a unique join code after %d attempts", createRetries)
}

func (s *gormStore) FindClassroomByID(ctx context.Context, id uint) (*models.Classroom, error) {
	var rec models.Classroom
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) FindClassroomByTeacherHash(ctx context.Context, hash string) (*models.Classroom, error) {
	var rec models.Classroom
	err := s.db.WithContext(ctx).Where("teacher_token_hash = ?", hash).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) FindClassroomByJoinCode(ctx context.Context, code string) (*models.Classroom, error) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	var rec models.Classroom
	err := s.db.WithContext(ctx).
		Where("join_code = ? AND active = ?", canonical, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) UpdateClassroom(ctx context.Context, id uint, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return true, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Classroom{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) CountActiveStudents(ctx context.Context, classroomID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Student{}).
		Where("classroom_id = ? AND active = ?", classroomID, true).
		Count(&n).Error
	return n, err
}

func (s *gormStore) CreateStudent(ctx context.Context, classroomID uint, displayName string) (*models.Student, string, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		rawToken, err := auth.NewToken()
		if err != nil {
			return nil, "", err
		}
		rec := models.Student{
			ClassroomID: classroomID,
			DisplayName: displayName,
			TokenHash:   auth.HashToken(rawToken),
			Active:      true,
		}
		err = s.db.WithContext(ctx).Create(&rec).Error
		if err == nil {
			return &rec, rawToken, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("store: could not mint a unique student token after %d attempts", createRetries)
}

func (s *gormStore) FindStudentByHash(ctx context.Context, hash string) (*models.Student, error) {
	var rec models.Student
	err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) ListStudents(ctx context.Context, classroomID uint) ([]models.Student, error) {
	var recs []models.Student
	err := s.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("id").
		Find(&recs).Error
	return recs, err
}

func (s *gormStore) ConsumeQuota(ctx context.Context, studentID uint, limit int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ? AND active = ? AND requests_used < ?", studentID, true, limit).
		UpdateColumn("requests_used", gorm.Expr("requests_used + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) DeactivateStudent(ctx context.Context, studentID, classroomID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ? AND classroom_id = ? AND active = ?", studentID, classroomID, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) ResetUsage(ctx context.Context, classroomID uint) error {
	return s.db.WithContext(ctx).Model(&models.Student{}).
		Where("classroom_id = ?", classroomID).
		Update("requests_used", 0).Error
}
