package forum

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/pkg/api"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/time/rate"
)

// Client talks to an SMF board with a single logged-in account. Every request
// waits on a shared limiter so the board never sees more than one request per
// RequestInterval from the bot.
type Client struct {
	cfg          config.ForumConfigs
	apiGenerator api.Generator
	httpClient   *http.Client
	loginClient  *http.Client
	limiter      *rate.Limiter
	now          func() time.Time

	mu      sync.RWMutex
	cookies []*http.Cookie
}

func NewClient(cfg config.ForumConfigs) *Client {
	limit := rate.Inf
	if cfg.RequestInterval.Duration > 0 {
		limit = rate.Every(cfg.RequestInterval.Duration)
	}

	return &Client{
		cfg:          cfg,
		apiGenerator: api.NewGenerator(cfg.BaseURL),
		httpClient:   &http.Client{Timeout: cfg.Timeout.Duration},
		loginClient: &http.Client{
			Timeout: cfg.Timeout.Duration,
			// The session cookies are only set on the redirect response.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Login opens the session used by every later request.
func (c *Client) Login(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	resp, err := c.apiGenerator.New("/index.php?action=login2;ccode=%s", c.cfg.CaptchaCode).
		Body(api.Parameter{
			"user":           c.cfg.User,
			"passwrd":        c.cfg.Password,
			"cookieneverexp": "on",
			"hash_passwrd":   "",
		}).
		POST(xcontext.WithHTTPClient(ctx, c.loginClient))
	if err != nil {
		return err
	}

	if len(resp.Cookies) == 0 {
		return errorx.New(errorx.Unauthenticated, "Login to forum as %s failed", c.cfg.User)
	}

	c.mu.Lock()
	c.cookies = resp.Cookies
	c.mu.Unlock()

	xcontext.Logger(ctx).Infof("Logged in to forum as %s", c.cfg.User)
	return nil
}

// PublishPost replies to a thread and returns the id of the new post.
func (c *Client) PublishPost(ctx context.Context, req PostRequest) (int64, error) {
	sesc, err := c.sesc(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := c.post(ctx, api.Parameter{
		"topic":   strconv.FormatInt(req.TopicID, 10),
		"icon":    "xx",
		"subject": req.Subject,
		"message": EncodeEntities(req.Message),
		"sc":      sesc,
	}, "/index.php?action=post2")
	if err != nil {
		return 0, err
	}

	postID, err := parsePublishedPostID(resp.RawBody)
	if err != nil {
		return 0, errorx.New(errorx.BadResponse, "Cannot publish to topic %d: %v", req.TopicID, err)
	}

	xcontext.Logger(ctx).Infof("Published post %d to topic %d", postID, req.TopicID)
	return postID, nil
}

// EditPost replaces subject and message of an existing post.
func (c *Client) EditPost(ctx context.Context, req EditRequest) (int64, error) {
	sesc, err := c.sesc(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := c.post(ctx, api.Parameter{
		"topic":   strconv.FormatInt(req.TopicID, 10),
		"icon":    "xx",
		"subject": req.Subject,
		"message": EncodeEntities(req.Message),
		"goback":  "1",
		"sc":      sesc,
	}, "/index.php?action=post2;msg=%d", req.PostID)
	if err != nil {
		return 0, err
	}

	postID, err := parseEditedPostID(resp.URL)
	if err != nil {
		return 0, errorx.New(errorx.BadResponse, "Cannot edit post %d: %v", req.PostID, err)
	}

	xcontext.Logger(ctx).Infof("Edited post %d", postID)
	return postID, nil
}

// LookupTopic scrapes author, creation time, title and merits of a thread.
func (c *Client) LookupTopic(ctx context.Context, topicID int64) (*Topic, error) {
	resp, err := c.get(ctx, "/index.php?topic=%d", topicID)
	if err != nil {
		return nil, err
	}

	topic, err := parseTopic(resp.RawBody, topicID, c.now())
	if err != nil {
		return nil, errorx.New(errorx.BadResponse, "Cannot read topic %d: %v", topicID, err)
	}

	return topic, nil
}

func (c *Client) sesc(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/index.php?action=profile")
	if err != nil {
		return "", err
	}

	sesc, err := parseSesc(resp.RawBody)
	if err != nil {
		return "", errorx.New(errorx.Unauthenticated, "Cannot get session token: %v", err)
	}

	return sesc, nil
}

func (c *Client) get(ctx context.Context, path string, args ...any) (*api.Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.apiGenerator.New(path, args...).
		GET(xcontext.WithHTTPClient(ctx, c.httpClient), api.Cookies(c.session()...))
	return c.check(resp, err)
}

func (c *Client) post(ctx context.Context, form api.Parameter, path string, args ...any) (*api.Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.apiGenerator.New(path, args...).
		Body(form).
		POST(xcontext.WithHTTPClient(ctx, c.httpClient), api.Cookies(c.session()...))
	return c.check(resp, err)
}

func (c *Client) check(resp *api.Response, err error) (*api.Response, error) {
	if err != nil {
		common.PromCounters[common.ForumRequestFailure].WithLabelValues("transport").Inc()
		return nil, errorx.New(errorx.Unavailable, "Forum is unreachable: %v", err)
	}

	if resp.Code >= http.StatusBadRequest {
		common.PromCounters[common.ForumRequestFailure].WithLabelValues(strconv.Itoa(resp.Code)).Inc()
		return nil, errorx.New(errorx.Unavailable, "Forum answered %d", resp.Code)
	}

	return resp, nil
}

func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

func (c *Client) session() []*http.Cookie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cookies
}
