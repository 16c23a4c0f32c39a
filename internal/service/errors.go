package service

import (
	"ProductKeeper/internal/apperr"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// validID отсекает идентификаторы, которые не могут быть UUID: postgres отвечает
// на них ошибкой приведения типа, а не отсутствием записи.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notFoundOr переводит отсутствие записи в nf, остальные ошибки хранилища в CollaboratorUnavailable.
func notFoundOr(err error, nf *apperr.Error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return apperr.Collaborator(op, err)
}
