package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"loft-chat/internal/model"
)

// ErrSessionExpired 表示会话令牌已失效（服务端 401）。
// 控制器对它做特殊处理：任何携带它的响应都短路为跳转登录，不更新模型。
var ErrSessionExpired = errors.New("session expired")

// ErrNotFound 表示请求的资源或翻页游标不存在（服务端 404）。
// 对向上翻页而言它是“没有更多数据”的终态信号，不是错误弹窗。
var ErrNotFound = errors.New("not found")

// ValidationError 携带提交被拒绝时的字段级错误，核心原样透传给渲染层。
type ValidationError struct {
	Errors []model.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", e.Errors[0].Attribute, e.Errors[0].Message)
}

// Client 是控制器查询/变更边界的 HTTP 实现。
// 约定：每个方法要么返回完整结果，要么返回上面错误分类中的一种；
// 不会把残缺的响应体交给调用方。
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient 创建一个绑定会话令牌的客户端。
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Login 用 handle 换取会话令牌。给终端客户端的引导入口用，不走令牌鉴权。
func Login(ctx context.Context, baseURL, handle string) (model.LoginResponse, error) {
	c := &Client{baseURL: baseURL, httpc: &http.Client{Timeout: 15 * time.Second}}
	var out model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", model.LoginRequest{Handle: handle}, &out)
	return out, err
}

// RoomBootstrap 执行房间页的合并初始化查询。
func (c *Client) RoomBootstrap(ctx context.Context, spaceID, roomID string) (model.RoomBootstrap, error) {
	var out model.RoomBootstrap
	path := fmt.Sprintf("/api/spaces/%s/rooms/%s", url.PathEscape(spaceID), url.PathEscape(roomID))
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// FetchOlderPage 以游标向更旧方向取一页消息。
func (c *Client) FetchOlderPage(ctx context.Context, spaceID, roomID, before string, limit int) (model.MessagePage, error) {
	var out model.MessagePage
	path := fmt.Sprintf("/api/spaces/%s/rooms/%s/messages?before=%s&limit=%s",
		url.PathEscape(spaceID), url.PathEscape(roomID),
		url.QueryEscape(before), strconv.Itoa(limit))
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// SubmitMessage 提交一条消息。ClientID 让服务端能对重试做幂等去重。
func (c *Client) SubmitMessage(ctx context.Context, spaceID, roomID string, req model.SubmitRequest) (model.Message, error) {
	var out model.Message
	path := fmt.Sprintf("/api/spaces/%s/rooms/%s/messages", url.PathEscape(spaceID), url.PathEscape(roomID))
	err := c.do(ctx, http.MethodPost, path, req, &out)
	return out, err
}

// RecordView 上报 last-read 标记。调用方对非过期失败静默吸收。
func (c *Client) RecordView(ctx context.Context, spaceID, roomID string, req model.RecordViewRequest) error {
	path := fmt.Sprintf("/api/spaces/%s/rooms/%s/views", url.PathEscape(spaceID), url.PathEscape(roomID))
	return c.do(ctx, http.MethodPost, path, req, nil)
}

type validationBody struct {
	Errors []model.FieldError `json:"errors"`
}

// do 执行一次请求并把 HTTP 状态映射到错误分类：
// 401 -> ErrSessionExpired，404 -> ErrNotFound，422 -> *ValidationError，
// 其余非 2xx -> 普通请求失败。
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrSessionExpired
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var vb validationBody
		if err := json.NewDecoder(resp.Body).Decode(&vb); err != nil {
			return &ValidationError{}
		}
		return &ValidationError{Errors: vb.Errors}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
