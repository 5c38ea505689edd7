// Package service реализует операции каталога поверх хранилища. Версии API отличаются
// только транспортом: оба адаптера вызывают одни и те же сервисы.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"cinevault/internal/store"
	"cinevault/pkg/auth"
)

// DeleteMode способ удаления записи.
type DeleteMode int

const (
	HardDelete DeleteMode = iota
	SoftDelete
)

// ParseDeleteMode разбирает "hard" или "soft".
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soft", "":
		return SoftDelete, nil
	case "hard":
		return HardDelete, nil
	}
	return SoftDelete, fmt.Errorf("unknown delete mode %q, expected soft or hard", s)
}

func (m DeleteMode) String() string {
	if m == HardDelete {
		return "hard"
	}
	return "soft"
}

// Entity общий контракт CRUD-сервиса. Версионные адаптеры API параметризуются им.
type Entity[Req any, Out any] interface {
	List(ctx context.Context) ([]Out, error)
	Get(ctx context.Context, id int64) (Out, error)
	Create(ctx context.Context, req Req) (int64, error)
	Update(ctx context.Context, id int64, req Req) error
	Delete(ctx context.Context, id int64, mode DeleteMode) error
}

// Config настройки сервисов.
type Config struct {
	// BulkDeleteMode режим пакетного удаления фильмов.
	BulkDeleteMode DeleteMode
}

// Services набор сервисов каталога.
type Services struct {
	Movies  *MovieService
	Users   *UserService
	Reviews *ReviewService
	Actors  *ActorService
	Likes   *LikeService
	Admin   *AdminService
}

type base struct {
	store     store.Store
	logger    *slog.Logger
	validator *validator.Validate
}

// New собирает сервисы над общим хранилищем.
func New(st store.Store, hasher auth.PasswordHasher, logger *slog.Logger, cfg Config) *Services {
	b := &base{store: st, logger: logger, validator: NewValidator()}
	return &Services{
		Movies:  &MovieService{base: b, bulkDeleteMode: cfg.BulkDeleteMode},
		Users:   &UserService{base: b, hasher: hasher},
		Reviews: &ReviewService{base: b},
		Actors:  &ActorService{base: b},
		Likes:   &LikeService{base: b},
		Admin:   &AdminService{base: b},
	}
}

// NewValidator создает валидатор, который называет поля по их json-именам.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate возвращает ошибку KindValidation с сообщениями по полям.
func (b *base) validate(ctx context.Context, req any) error {
	err := b.validator.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Internal(fmt.Errorf("validate request: %w", err))
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	b.logger.WarnContext(ctx, "Request validation failed", slog.String("error", strings.Join(msgs, "; ")))
	return Validation("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
}

// storeMessages сообщения для перевода ошибок хранилища.
type storeMessages struct {
	notFound   string
	conflict   string
	dependents string
}

// translate переводит ошибку хранилища в ошибку сервиса. Непредвиденные ошибки логируются.
func (b *base) translate(ctx context.Context, op string, err error, msgs storeMessages) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return NotFound("%s", msgs.notFound)
	case errors.Is(err, store.ErrAlreadyExists) && msgs.conflict != "":
		return Conflict("%s", msgs.conflict)
	case errors.Is(err, store.ErrHasDependents) && msgs.dependents != "":
		return Conflict("%s", msgs.dependents)
	}
	b.logger.ErrorContext(ctx, "Store operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return Internal(fmt.Errorf("%s: %w", op, err))
}

// BulkFailure отклоненный элемент пакетной операции.
type BulkFailure struct {
	Index  int
	Reason string
}

func (f BulkFailure) String() string {
	return fmt.Sprintf("%d:%s", f.Index, f.Reason)
}

// BulkResult итог пакетного создания. IDs в порядке входа среди принятых элементов.
type BulkResult struct {
	IDs    []int64
	Failed []BulkFailure
}

// CreateMany создает элементы по одному. Ошибка элемента не прерывает пакет.
func CreateMany[Req any, Out any](ctx context.Context, svc Entity[Req, Out], reqs []Req) (BulkResult, error) {
	if len(reqs) == 0 {
		return BulkResult{}, Validation("List of items is required")
	}
	res := BulkResult{IDs: make([]int64, 0, len(reqs))}
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, err := svc.Create(ctx, req)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{Index: i, Reason: MessageOf(err)})
			continue
		}
		res.IDs = append(res.IDs, id)
	}
	return res, nil
}

// distinct убирает повторы, сохраняя порядок первого появления.
func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
