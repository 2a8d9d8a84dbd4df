package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/amielle/duty-roster/internal/model"
	"github.com/amielle/duty-roster/internal/utils"
)

// UserRepo manages persistence for the users and parent_links tables.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID.  studentNumber is only
// stored for the STUDENT role.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, role, studentNumber string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var num any
	if role == model.RoleStudent && studentNumber != "" {
		num = studentNumber
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role, student_number) VALUES (?,?,?,?,?)",
		email, hash, fullName, role, num)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	var num sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,role,student_number,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &num, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if num.Valid {
		u.StudentNumber = num.String
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	var num sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,role,student_number,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &num, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if num.Valid {
		u.StudentNumber = num.String
	}
	return u, err
}

// LinkChild associates a parent account with a student account.  The
// link gives the parent a read-only view of the student's duties.
// Linking the same pair twice is not an error.
func (r *UserRepo) LinkChild(ctx context.Context, parentID, studentID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO parent_links (parent_id, student_id) VALUES (?,?)", parentID, studentID)
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

// FindStudentByNumber resolves a student by their college student
// number, used when a parent links their child at registration.
func (r *UserRepo) FindStudentByNumber(ctx context.Context, studentNumber string) (model.User, error) {
	var u model.User
	var num sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,role,student_number,is_active,created_at,updated_at FROM users WHERE role='STUDENT' AND student_number=? LIMIT 1",
		strings.TrimSpace(studentNumber)).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &num, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if num.Valid {
		u.StudentNumber = num.String
	}
	return u, err
}
