package data

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/stock_radar/app/display/internal/usecase"
)

type userRepo struct {
	data *Data
	log  *log.Helper
}

func NewUserRepo(data *Data, logger log.Logger) usecase.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, u *usecase.User) error {
	_, err := r.data.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)`,
		u.Username, u.PasswordHash)
	return err
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*usecase.User, error) {
	var u usecase.User
	var watchlistRaw string
	err := r.data.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, persona, watchlist
		FROM users WHERE username = $1`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Persona, &watchlistRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
		}
		return nil, err
	}

	// watchlist 以 JSON 数组存储
	u.Watchlist = []string{}
	if watchlistRaw != "" {
		if err := json.Unmarshal([]byte(watchlistRaw), &u.Watchlist); err != nil {
			r.log.Warnf("invalid watchlist for user %s: %v", username, err)
			u.Watchlist = []string{}
		}
	}
	return &u, nil
}

func (r *userRepo) UpdateUserProfile(ctx context.Context, id int, persona string, watchlist []string) error {
	if watchlist == nil {
		watchlist = []string{}
	}
	raw, err := json.Marshal(watchlist)
	if err != nil {
		return err
	}
	_, err = r.data.db.ExecContext(ctx, `
		UPDATE users SET persona = $1, watchlist = $2 WHERE id = $3`,
		persona, string(raw), id)
	return err
}
