package restaurant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/findmy/pkg/errors"
)

// Service exposes restaurant directory operations.
type Service interface {
	Create(ctx context.Context, in Input) (Restaurant, error)
	Get(ctx context.Context, id int64) (Restaurant, error)
	List(ctx context.Context) ([]Restaurant, error)
	Update(ctx context.Context, id int64, in Input) (Restaurant, error)
	Delete(ctx context.Context, id int64) (DeleteResponse, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the restaurant service.
func NewService(repo Repository, logger *slog.Logger) Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &service{
		repo:     repo,
		validate: validate,
		logger:   logger.With("component", "restaurant.service"),
	}
}

func (s *service) Create(ctx context.Context, in Input) (Restaurant, error) {
	in, err := s.normalize(in)
	if err != nil {
		return Restaurant{}, err
	}
	created, err := s.repo.Create(ctx, in)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return Restaurant{}, apperrors.Wrap(apperrors.CodeConflict, "a restaurant with this email already exists", err)
		}
		return Restaurant{}, apperrors.Wrap("store_error", "failed to create restaurant", err)
	}
	s.logger.Info("restaurant created", "id", created.ID)
	return created, nil
}

func (s *service) Get(ctx context.Context, id int64) (Restaurant, error) {
	if id <= 0 {
		return Restaurant{}, apperrors.Wrap(apperrors.CodeInvalidInput, "restaurant id must be positive", nil)
	}
	found, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Restaurant{}, apperrors.Wrap("store_error", "failed to load restaurant", err)
	}
	if !ok {
		return Restaurant{}, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}
	return found, nil
}

func (s *service) List(ctx context.Context) ([]Restaurant, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "failed to list restaurants", err)
	}
	if len(items) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "no restaurants found", nil)
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, id int64, in Input) (Restaurant, error) {
	if id <= 0 {
		return Restaurant{}, apperrors.Wrap(apperrors.CodeInvalidInput, "restaurant id must be positive", nil)
	}
	in, err := s.normalize(in)
	if err != nil {
		return Restaurant{}, err
	}
	updated, ok, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return Restaurant{}, apperrors.Wrap(apperrors.CodeConflict, "a restaurant with this email already exists", err)
		}
		return Restaurant{}, apperrors.Wrap("store_error", "failed to update restaurant", err)
	}
	if !ok {
		return Restaurant{}, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) (DeleteResponse, error) {
	if id <= 0 {
		return DeleteResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "restaurant id must be positive", nil)
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResponse{}, apperrors.Wrap("store_error", "failed to delete restaurant", err)
	}
	if !ok {
		return DeleteResponse{}, apperrors.Wrap(apperrors.CodeNotFound, "restaurant not found", nil)
	}
	s.logger.Info("restaurant deleted", "id", id)
	return DeleteResponse{Message: "Restaurant deleted successfully"}, nil
}

func (s *service) normalize(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.CuisineType = strings.TrimSpace(in.CuisineType)
	if in.Website != nil {
		trimmed := strings.TrimSpace(*in.Website)
		if trimmed == "" {
			in.Website = nil
		} else {
			in.Website = &trimmed
		}
	}
	if in.OpeningHours == nil {
		in.OpeningHours = map[string]string{}
	}
	if err := s.validate.Struct(in); err != nil {
		return Input{}, apperrors.Wrap(apperrors.CodeInvalidInput, describeValidation(err), err)
	}
	return in, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid restaurant payload"
	}
	first := fieldErrs[0]
	return fmt.Sprintf("field %s failed %q validation", first.Field(), first.Tag())
}
