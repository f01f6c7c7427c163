package identity

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pairlink/internal/cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resolveCacheTTL = time.Minute

type ResolverParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type dbResolver struct {
	db    *gorm.DB
	log   *zap.Logger
	known *cache.TTLCache[snowflake.ID, struct{}]
}

func NewResolver(p ResolverParam) Resolver {
	return &dbResolver{
		db:    p.DB,
		log:   p.Log.Named("identity.resolver"),
		known: cache.NewTTLCache[snowflake.ID, struct{}](),
	}
}

// Resolve parses and verifies the submitter identifier against the
// submitters table. Known IDs are cached briefly; the table is append-mostly.
func (r *dbResolver) Resolve(ctx context.Context, submitterID string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(submitterID))
	if err != nil || id == 0 {
		return 0, ErrUnknownSubmitter
	}

	if _, ok := r.known.Get(id); ok {
		return id, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&Submitter{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrUnknownSubmitter
	}

	r.known.Set(id, struct{}{}, resolveCacheTTL)
	return id, nil
}
