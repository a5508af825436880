package tenant

import (
	"context"
	"errors"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "tenant_policy"
	cacheKeyPrefix = "cache:tenant:"
)

// ErrNotFound 租户无独立策略, 调用方回退到全局缺省
var ErrNotFound = errors.New("tenant policy not found")

type MongoMapper interface {
	FindOne(ctx context.Context, tenantId string) (p *TenantPolicy, err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewTenantMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

func (m *mongoMapper) FindOne(ctx context.Context, tenantId string) (p *TenantPolicy, err error) {
	p = new(TenantPolicy)
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+tenantId, p, bson.M{cst.Id: tenantId}); err != nil {
		if errors.Is(err, monc.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
