package repository

import (
	"errors"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"gorm.io/gorm"
)

// translate 將 gorm 錯誤轉為 common 錯誤
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound.Wrap(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return common.ErrConflict.Wrap(err)
	default:
		return err
	}
}
