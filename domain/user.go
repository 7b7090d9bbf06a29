package domain

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// User represents a user entity in the system.
// A user can register, login, and perform actions like writing articles.
type User struct {
	ID        int64     // Unique identifier
	Name      string    // Display name
	Username  string    // Login username (unique)
	Password  string    // Bcrypt hashed password
	Role      string    // user / publisher / admin
	IsBanned  bool      // Banned users cannot login
	CreatedAt time.Time // Account creation timestamp
	UpdatedAt time.Time // Last profile update timestamp
}

// CanPublish reports whether the user may create articles.
func (u *User) CanPublish() bool {
	return u.Role == RolePublisher || u.Role == RoleAdmin
}

// UserRepository defines the contract for user data persistence.
type UserRepository interface {
	// GetByID retrieves a user by their ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetByID(ctx context.Context, id int64) (User, error)

	// Insert creates a new user account.
	// Backfills the ID in the provided User object upon success.
	Insert(ctx context.Context, u *User) error

	// Update modifies an existing user's information.
	Update(ctx context.Context, u *User) error

	// GetByUsername retrieves a user by their username.
	// Used during login to verify credentials.
	GetByUsername(ctx context.Context, username string) (User, error)

	GetByIDs(ctx context.Context, userIDs []int64) ([]User, error)

	// Fetch retrieves a page of users ordered by id, for moderation.
	Fetch(ctx context.Context, cursor int64, limit int64) ([]User, error)

	// SetBanned flips the ban flag of one user.
	SetBanned(ctx context.Context, id int64, banned bool) error
}

// UserUsecase defines the business logic contract for user operations.
// Handles authentication, registration, and user management.
type UserUsecase interface {
	// Register creates a new user account.
	// Returns ErrConflict if the username already exists.
	Register(ctx context.Context, name, username, password string) error

	// Login verifies user credentials and returns a JWT token.
	// Returns ErrNotFound if the user doesn't exist.
	// Returns ErrBadParamInput if the password is incorrect.
	// Returns ErrForbidden if the account is banned.
	Login(ctx context.Context, username, password string) (string, error)

	// EditPassword verifies user credentials and change the password by given new password
	EditPassword(ctx context.Context, id int64, oldPassword, newPassword string) error

	// Fetch lists users for the admin dashboard.
	Fetch(ctx context.Context, cursor int64, limit int64) ([]User, error)

	// SetBanned bans or unbans a user. Admin only, enforced by the caller.
	SetBanned(ctx context.Context, id int64, banned bool) error
}
