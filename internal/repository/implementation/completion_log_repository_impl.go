package implementation

import (
	"context"

	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/mapper"
	"genie-chat-be/internal/model"
	"genie-chat-be/internal/repository/contract"
	"genie-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CompletionLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CompletionLogMapper
}

func NewCompletionLogRepository(db *gorm.DB) contract.CompletionLogRepository {
	return &CompletionLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewCompletionLogMapper(),
	}
}

func (r *CompletionLogRepositoryImpl) Create(ctx context.Context, log *entity.CompletionLog) error {
	m, err := r.mapper.ToModel(log)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *CompletionLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CompletionLog, error) {
	var models []*model.CompletionLog
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CompletionLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CompletionLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.CompletionLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
