package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/json"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
)

// httpx/client 是一个简单的http客户端, 供外部协作方(工单系统等)调用使用

var (
	client *HttpClient
	once   sync.Once
)

const (
	GET  = "GET"
	POST = "POST"
)

// HttpClient 是一个简单的 HTTP 客户端
type HttpClient struct {
	Client *http.Client
}

// NewHttpClient 单例模式维护一个client
func NewHttpClient() *HttpClient {
	once.Do(func() {
		client = &HttpClient{
			Client: http.DefaultClient,
		}
	})
	return client
}

func GetHttpClient() *HttpClient {
	return NewHttpClient()
}

// do 发送请求
func (c *HttpClient) do(ctx context.Context, method, url string, headers http.Header, body any) (resp *http.Response, err error) {
	// 序列化 body 为 JSON
	var bodyBytes []byte
	var req *http.Request
	if bodyBytes, err = json.Marshal(body); err != nil {
		return nil, fmt.Errorf("[httpx]请求体序列化失败: %w", err)
	}
	// 创建新的请求
	if req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(bodyBytes)); err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	// 设置请求头
	for k, vv := range headers {
		req.Header[k] = vv
	}
	// 发送请求
	return c.Client.Do(req)
}

func checkStatusCode(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_resp, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, response body: %s", resp.StatusCode, _resp)
	}
	return nil
}

func (c *HttpClient) getResp(ctx context.Context, method, url string, headers http.Header, body any) (header http.Header, resp []byte, err error) {
	var response *http.Response
	if response, err = c.do(ctx, method, url, headers, body); err != nil {
		return nil, nil, fmt.Errorf("[httpx] 发送请求失败: %w", err)
	}
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			logs.Errorf("[httpx] 关闭请求失败: %s", errorx.ErrorWithoutStack(closeErr))
		}
	}()
	// 检查响应状态码
	if err = checkStatusCode(response); err != nil {
		return response.Header, nil, err
	}
	// 读取响应体
	var _resp []byte
	if _resp, err = io.ReadAll(response.Body); err != nil {
		return response.Header, nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return response.Header, _resp, nil
}

// Req 非流式HTTP请求
func (c *HttpClient) Req(ctx context.Context, method, url string, headers http.Header, body any) (resp map[string]any, err error) {
	var _resp []byte
	if _, _resp, err = c.getResp(ctx, method, url, headers, body); err != nil {
		return
	}
	if err = json.Unmarshal(_resp, &resp); err != nil {
		return nil, fmt.Errorf("反序列化响应失败: %w", err)
	}
	return resp, nil
}

// Get 非流式Get
func (c *HttpClient) Get(ctx context.Context, url string, headers http.Header, body any) (resp map[string]any, err error) {
	return c.Req(ctx, GET, url, headers, body)
}

// Post 非流式Post
func (c *HttpClient) Post(ctx context.Context, url string, headers http.Header, body any) (resp map[string]any, err error) {
	return c.Req(ctx, POST, url, headers, body)
}

func ReqWithHeader[T any](ctx context.Context, method, url string, headers http.Header, body any) (header http.Header, resp T, err error) {
	// 读取响应体
	var _resp []byte
	if header, _resp, err = GetHttpClient().getResp(ctx, method, url, headers, body); err != nil {
		return
	}
	// 反序列化响应体
	if err = json.Unmarshal(_resp, &resp); err != nil {
		return header, resp, fmt.Errorf("反序列化响应失败: %w", err)
	}
	return header, resp, nil
}

func Req[T any](ctx context.Context, method, url string, headers http.Header, body any) (resp T, err error) {
	_, resp, err = ReqWithHeader[T](ctx, method, url, headers, body)
	return resp, err
}

func Get[T any](ctx context.Context, url string, headers http.Header, body any) (resp T, err error) {
	_, resp, err = ReqWithHeader[T](ctx, GET, url, headers, body)
	return resp, err
}

func Post[T any](ctx context.Context, url string, headers http.Header, body any) (resp T, err error) {
	_, resp, err = ReqWithHeader[T](ctx, POST, url, headers, body)
	return resp, err
}
