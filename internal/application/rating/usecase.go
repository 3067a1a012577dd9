package rating

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	ratingdomain "ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

// ErrUnknownKind запрошен вид рейтинга, для которого нет сервиса
var ErrUnknownKind = errors.New("unknown rating kind")

// UseCase представляет use case для работы с рейтингами.
// Проверяет административный ключ перед изменяющими операциями.
type UseCase struct {
	services map[string]ratingdomain.Service
	adminKey string
}

// NewUseCase создает новый use case для рейтингов
func NewUseCase(adminKey string, services ...ratingdomain.Service) *UseCase {
	uc := &UseCase{
		services: make(map[string]ratingdomain.Service, len(services)),
		adminKey: adminKey,
	}
	for _, svc := range services {
		uc.services[svc.Kind()] = svc
	}
	return uc
}

// UpdateRequest запрос на административное обновление рейтинга
type UpdateRequest struct {
	ProviderName string   `json:"providerName"`
	Rating       *float64 `json:"rating"`
	AuthKey      string   `json:"authKey"`
}

// Kinds возвращает виды рейтингов, для которых есть сервис
func (uc *UseCase) Kinds() []string {
	kinds := make([]string, 0, len(uc.services))
	for kind := range uc.services {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Service возвращает domain service для вида рейтинга
func (uc *UseCase) Service(kind string) (ratingdomain.Service, error) {
	svc, ok := uc.services[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return svc, nil
}

// Authorize сверяет переданный ключ с настроенным.
// Пустой настроенный ключ запрещает все административные операции.
func (uc *UseCase) Authorize(authKey string) error {
	if uc.adminKey == "" || authKey == "" {
		return ratingdomain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(uc.adminKey), []byte(authKey)) != 1 {
		return ratingdomain.ErrUnauthorized
	}
	return nil
}

// Resolve возвращает рейтинг провайдера
func (uc *UseCase) Resolve(ctx context.Context, kind, providerName string) (*ratingdomain.Result, error) {
	svc, err := uc.Service(kind)
	if err != nil {
		return nil, err
	}
	return svc.Resolve(ctx, providerName)
}

// Update обновляет рейтинг после проверки ключа
func (uc *UseCase) Update(ctx context.Context, kind string, req UpdateRequest) (*repositories.RatingRecord, error) {
	if err := uc.Authorize(req.AuthKey); err != nil {
		return nil, err
	}
	if req.Rating == nil {
		return nil, fmt.Errorf("%w: rating is required", ratingdomain.ErrInvalidRatingValue)
	}

	svc, err := uc.Service(kind)
	if err != nil {
		return nil, err
	}
	return svc.Update(ctx, req.ProviderName, *req.Rating)
}

// Delete удаляет рейтинг после проверки ключа
func (uc *UseCase) Delete(ctx context.Context, kind, providerName, authKey string) (string, error) {
	if err := uc.Authorize(authKey); err != nil {
		return "", err
	}

	svc, err := uc.Service(kind)
	if err != nil {
		return "", err
	}
	return svc.Delete(ctx, providerName)
}

// List возвращает все сохраненные рейтинги вида после проверки ключа
func (uc *UseCase) List(ctx context.Context, kind, authKey string) ([]repositories.RatingRecord, error) {
	if err := uc.Authorize(authKey); err != nil {
		return nil, err
	}

	svc, err := uc.Service(kind)
	if err != nil {
		return nil, err
	}
	return svc.List(ctx)
}

// Health возвращает состояние хранилища вида
func (uc *UseCase) Health(ctx context.Context, kind string) (*ratingdomain.Health, error) {
	svc, err := uc.Service(kind)
	if err != nil {
		return nil, err
	}
	return svc.Health(ctx), nil
}
