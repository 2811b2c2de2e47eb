package eventtypes

import (
	"context"
	"fmt"
)

type Service struct {
	eventTypes EventTypeRepository
}

func NewService(eventTypes EventTypeRepository) *Service {
	return &Service{eventTypes: eventTypes}
}

func (s *Service) GetByID(ctx context.Context, id int64) (EventTypeOutput, error) {
	et, err := s.eventTypes.GetByIDWithOwnerAndTeam(ctx, id)
	if err != nil {
		return EventTypeOutput{}, err
	}
	if et == nil {
		return EventTypeOutput{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return toOutput(et), nil
}
