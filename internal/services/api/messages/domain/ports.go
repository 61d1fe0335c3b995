package domain

import "context"

// ServicePort defines the service contract for messages
type ServicePort interface {
	Create(ctx context.Context, in MessageInput) (Message, error)
	Get(ctx context.Context, messageID int64) (Message, error)
	List(ctx context.Context, in ListInput) ([]Message, int, error)
	Update(ctx context.Context, messageID int64, in MessageInput) (Message, error)
	Delete(ctx context.Context, messageID int64) (Message, error)
}
