package contract

import (
	"context"

	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/repository/specification"
)

type CompletionLogRepository interface {
	Create(ctx context.Context, log *entity.CompletionLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CompletionLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
