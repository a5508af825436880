package adaptor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/golang-jwt/jwt/v4"
	"go.opentelemetry.io/otel/propagation"
)

const hertzContext = "hertz_context"

func InjectContext(ctx context.Context, c *app.RequestContext) context.Context {
	return context.WithValue(ctx, hertzContext, c)
}

func ExtractContext(ctx context.Context) (*app.RequestContext, error) {
	c, ok := ctx.Value(hertzContext).(*app.RequestContext)
	if !ok {
		return nil, errors.New("hertz context not found")
	}
	return c, nil
}

// Identity 请求方身份, 从jwt claims解出
type Identity struct {
	UserId   string
	TenantId string
}

// ExtractIdentity 鉴权: 解析Authorization头中的jwt, 取出userId与tenantId
func ExtractIdentity(ctx context.Context) (id *Identity, err error) {
	defer func() {
		if err != nil {
			logs.CtxInfof(ctx, "extract identity fail, err=%v", err)
		}
	}()
	c, err := ExtractContext(ctx)
	if err != nil {
		return nil, err
	}

	tokenString := string(c.GetHeader("Authorization"))
	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return jwt.ParseECPublicKeyFromPEM([]byte(config.GetConfig().Auth.PublicKey))
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	data, err := json.Marshal(token.Claims)
	if err != nil {
		return nil, err
	}
	var claims map[string]interface{}
	if err = json.Unmarshal(data, &claims); err != nil {
		return nil, err
	}

	uid, ok := claims["userId"].(string)
	if !ok {
		return nil, errors.New("userId claim missing")
	}
	tenant, ok := claims["tenantId"].(string)
	if !ok {
		return nil, errors.New("tenantId claim missing")
	}
	return &Identity{UserId: uid, TenantId: tenant}, nil
}

var _ propagation.TextMapCarrier = &headerProvider{}

type headerProvider struct {
	headers *protocol.ResponseHeader
}

// Get a value from metadata by key
func (m *headerProvider) Get(key string) string {
	return m.headers.Get(key)
}

// Set a value to metadata by k/v
func (m *headerProvider) Set(key, value string) {
	m.headers.Set(key, value)
}

// Keys Iteratively get all keys of metadata
func (m *headerProvider) Keys() []string {
	out := make([]string, 0)

	m.headers.VisitAll(func(key, value []byte) {
		out = append(out, string(key))
	})

	return out
}
