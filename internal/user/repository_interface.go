package user

import "context"

type Repository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SearchByUsername(ctx context.Context, keyword string, limit int) ([]User, error)
}
