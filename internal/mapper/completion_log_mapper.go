package mapper

import (
	"encoding/json"

	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/model"

	"gorm.io/datatypes"
)

type CompletionLogMapper struct{}

func NewCompletionLogMapper() *CompletionLogMapper {
	return &CompletionLogMapper{}
}

func (m *CompletionLogMapper) ToModel(l *entity.CompletionLog) (*model.CompletionLog, error) {
	if l == nil {
		return nil, nil
	}

	citations := l.Citations
	if citations == nil {
		citations = []string{}
	}
	raw, err := json.Marshal(citations)
	if err != nil {
		return nil, err
	}

	return &model.CompletionLog{
		Id:            l.Id,
		UserId:        l.UserId,
		Provider:      l.Provider,
		PromptChars:   l.PromptChars,
		ResponseChars: l.ResponseChars,
		Citations:     datatypes.JSON(raw),
		Status:        l.Status,
		Error:         l.Error,
		LatencyMs:     l.LatencyMs,
		CreatedAt:     l.CreatedAt,
	}, nil
}

func (m *CompletionLogMapper) ToEntity(l *model.CompletionLog) *entity.CompletionLog {
	if l == nil {
		return nil
	}

	var citations []string
	if len(l.Citations) > 0 {
		// Malformed rows surface as an empty list rather than failing the read.
		_ = json.Unmarshal(l.Citations, &citations)
	}

	return &entity.CompletionLog{
		Id:            l.Id,
		UserId:        l.UserId,
		Provider:      l.Provider,
		PromptChars:   l.PromptChars,
		ResponseChars: l.ResponseChars,
		Citations:     citations,
		Status:        l.Status,
		Error:         l.Error,
		LatencyMs:     l.LatencyMs,
		CreatedAt:     l.CreatedAt,
	}
}
