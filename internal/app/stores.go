package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/repository"
	"github.com/noah-isme/school-roster-api/internal/repository/mongostore"
	"github.com/noah-isme/school-roster-api/pkg/config"
	"github.com/noah-isme/school-roster-api/pkg/database"
)

// UserStore is the credential store shared by both storage drivers.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Upsert(ctx context.Context, user *models.User) error
	DeleteByEmails(ctx context.Context, emails []string) (int64, error)
}

// StudentStore persists student records.
type StudentStore interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	CreateMany(ctx context.Context, students []models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// AttendanceStore persists per-day attendance marks.
type AttendanceStore interface {
	FindInRange(ctx context.Context, studentID string, from, to time.Time) (*models.AttendanceRecord, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
	UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus, updatedAt time.Time) error
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
	DeleteForStudent(ctx context.Context, studentID, id string) error
}

// Stores bundles the repositories for the configured driver.
type Stores struct {
	Driver     string
	SQL        *sqlx.DB
	Users      UserStore
	Students   StudentStore
	Attendance AttendanceStore

	mongo *mongo.Client
}

// OpenStores connects to the configured backend. For Postgres, migrate applies
// pending schema migrations before the repositories are handed out.
func OpenStores(ctx context.Context, cfg *config.Config, migrate bool) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:     config.DriverMongo,
			Users:      mongostore.NewUserStore(db),
			Students:   mongostore.NewStudentStore(db),
			Attendance: mongostore.NewAttendanceStore(db),
			mongo:      client,
		}, nil
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := repository.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Stores{
			Driver:     config.DriverPostgres,
			SQL:        db,
			Users:      repository.NewUserRepository(db),
			Students:   repository.NewStudentRepository(db),
			Attendance: repository.NewAttendanceRepository(db),
		}, nil
	}
}

// Close releases the underlying connections.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.SQL != nil {
		if err := s.SQL.Close(); err != nil {
			return fmt.Errorf("close postgres: %w", err)
		}
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			return fmt.Errorf("close mongo: %w", err)
		}
	}
	return nil
}
