package handler

import (
	"context"
	"time"

	"guildchat/internal/app/chat"
	"guildchat/internal/app/service"
	"guildchat/internal/app/storage"
	"guildchat/internal/configs"
	"guildchat/internal/pkg/cache"
	"guildchat/internal/pkg/logx"
)

// userExistsTTL bounds how long a positive user lookup is trusted by the auth middleware.
const userExistsTTL = 5 * time.Minute

// AppDeps carries everything the HTTP handlers need.
type AppDeps struct {
	Config  *configs.AppConfig
	Service *service.Service
	Access  *service.RoomAccess
	Manager *chat.Manager
	Cache   cache.Cache

	// Storage is nil when attachments are disabled.
	Storage storage.Service
}

func userCacheKey(userID string) string {
	return "user:exists:" + userID
}

// userExists answers from the cache first and remembers positive answers. Cache failures
// fall through to the store.
func (d *AppDeps) userExists(ctx context.Context, userID string) (bool, error) {
	key := userCacheKey(userID)

	if d.Cache != nil {
		if _, ok, err := d.Cache.Get(ctx, key); err == nil && ok {
			return true, nil
		} else if err != nil {
			logx.Warn("User cache lookup failed", "error", err.Error())
		}
	}

	exists, err := d.Service.UserExists(ctx, userID)
	if err != nil || !exists {
		return exists, err
	}

	if d.Cache != nil {
		if err := d.Cache.Set(ctx, key, "1", userExistsTTL); err != nil {
			logx.Warn("User cache write failed", "error", err.Error())
		}
	}
	return true, nil
}
