package repository

import (
	"database/sql"
	"errors"

	"github.com/qianji-dev/store-scheduler/backend/internal/config"
)

// 供 handler 区分可预期的数据冲突，底层的存储错误原样向上传递
var (
	ErrSwapAlreadyResolved = errors.New("换班申请已经被处理")
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}
