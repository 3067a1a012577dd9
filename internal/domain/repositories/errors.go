package repositories

import "errors"

// ErrStoreUnavailable возвращается репозиториями при любой ошибке драйвера хранилища
var ErrStoreUnavailable = errors.New("rating store unavailable")
