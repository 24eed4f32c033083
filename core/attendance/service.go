package attendance

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

type (
	Repository interface {
		// QueryHistory returns the person's attendance joined with event and event type,
		// most recent event start first.
		QueryHistory(ctx context.Context, personID int) ([]HistoryRow, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) (*Service, error) {
	if err := vala.BeginValidation().Validate(
		core.NotNil(repo, "repo"),
	).Check(); err != nil {
		return nil, err
	}
	return &Service{repo: repo}, nil
}

// History never returns a nil slice.
func (svc *Service) History(ctx context.Context, personID int) ([]HistoryRow, error) {
	rows, err := svc.repo.QueryHistory(ctx, personID)
	if err != nil {
		return nil, errors.Wrap(err, "querying history")
	}
	if rows == nil {
		rows = []HistoryRow{}
	}
	return rows, nil
}
