package domain

import "context"

type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Property, error)
	FindAll(ctx context.Context) ([]*Property, error)
	// IncrementViews and IncrementContactRequests perform the increment
	// atomically at the storage level and return the new counter value.
	IncrementViews(ctx context.Context, id string) (int64, error)
	IncrementContactRequests(ctx context.Context, id string) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// ImageStorage persists uploaded image bytes under generated names and
// serves them back via public URLs. Implementations: local content
// directory, MinIO bucket.
type ImageStorage interface {
	Save(ctx context.Context, filename string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
}
