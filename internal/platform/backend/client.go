package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/athena-learn/athena-web/internal/config"
	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
)

const (
	defaultTimeout         = 15 * time.Second
	defaultGenerateTimeout = 90 * time.Second
	maxResponseBytes       = 1 << 20
)

// Observer receives one observation per backend call.
type Observer interface {
	ObserveBackendCall(operation string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL string

	// Timeout bounds every call except GenerateStrategy.
	Timeout time.Duration
	// GenerateTimeout bounds GenerateStrategy.
	GenerateTimeout time.Duration

	// RatePerSecond of zero disables the outbound limiter.
	RatePerSecond float64
	Burst         int

	HTTPClient *http.Client
	Observer   Observer
	Logger     *slog.Logger
}

// Client talks to the learning backend. It is safe for concurrent use.
type Client struct {
	baseURL         string
	timeout         time.Duration
	generateTimeout time.Duration

	limiter    *rate.Limiter
	httpClient *http.Client
	observer   Observer
	logger     *slog.Logger
}

var _ API = (*Client)(nil)

// New creates a Client.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	generateTimeout := opts.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:         baseURL,
		timeout:         timeout,
		generateTimeout: generateTimeout,
		limiter:         limiter,
		httpClient:      hc,
		observer:        opts.Observer,
		logger:          log.With(slog.String("component", "backend_client")),
	}, nil
}

// NewFromConfig creates a Client from the backend section of the configuration.
func NewFromConfig(cfg config.BackendConfig, observer Observer, log *slog.Logger) (*Client, error) {
	return New(Options{
		BaseURL:         cfg.BaseURL,
		Timeout:         time.Duration(cfg.TimeoutSeconds) * time.Second,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		RatePerSecond:   cfg.RatePerSecond,
		Burst:           cfg.Burst,
		Observer:        observer,
		Logger:          log,
	})
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Register creates an account and returns its credentials.
func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	req := map[string]string{"username": username, "email": email, "password": password}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "register", c.timeout, http.MethodPost, "/auth/register/", "", req, &raw); err != nil {
		return AuthResult{}, err
	}
	return decodeAuthResult(raw)
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	req := map[string]string{"username": username, "password": password}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "login", c.timeout, http.MethodPost, "/auth/token/", "", req, &raw); err != nil {
		return AuthResult{}, err
	}
	return decodeAuthResult(raw)
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	req := map[string]string{"refresh": refreshToken}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "refresh_token", c.timeout, http.MethodPost, "/auth/token/refresh/", "", req, &raw); err != nil {
		return "", err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return "", err
	}
	access := o.str("access", "access_token", "accessToken")
	if access == "" {
		return "", fmt.Errorf("%w: refresh response without access token", domain.ErrServer)
	}
	return access, nil
}

// GetProfile returns the user's profile. A missing profile is domain.ErrNotFound.
func (c *Client) GetProfile(ctx context.Context, token string, userID int64) (*domain.Profile, error) {
	var raw json.RawMessage
	path := "/profile/" + strconv.FormatInt(userID, 10) + "/"
	if err := c.doJSON(ctx, "get_profile", c.timeout, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if inner, ok := o.lookup("profile"); ok {
		if o, err = decodeObject(inner); err != nil {
			return nil, err
		}
	}
	p := normalizeProfile(o, userID)
	return &p, nil
}

// GetRecommendations returns the recommendation bundle for a user.
func (c *Client) GetRecommendations(ctx context.Context, token string, userID int64) (domain.RecommendationBundle, error) {
	var raw json.RawMessage
	path := "/recommendations/" + strconv.FormatInt(userID, 10) + "/"
	if err := c.doJSON(ctx, "get_recommendations", c.timeout, http.MethodGet, path, token, nil, &raw); err != nil {
		return domain.RecommendationBundle{}, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return domain.RecommendationBundle{}, err
	}
	return normalizeBundle(o, userID)
}

// GetStrategies returns every strategy of a user in backend order.
func (c *Client) GetStrategies(ctx context.Context, token string, userID int64) ([]domain.Strategy, error) {
	var raw json.RawMessage
	path := "/users/" + strconv.FormatInt(userID, 10) + "/strategies/"
	if err := c.doJSON(ctx, "get_strategies", c.timeout, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}
	if list, err := normalizeStrategies(raw); err == nil {
		return list, nil
	}
	o, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	field, _ := o.lookup("strategies")
	return normalizeStrategies(field)
}

// RegisterCourse registers an external course by URL. An already registered
// course is returned as is.
func (c *Client) RegisterCourse(ctx context.Context, token, stepikURL string) (domain.Course, error) {
	req := map[string]string{"stepik_url": stepikURL}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "register_course", c.timeout, http.MethodPost, "/add-course/", token, req, &raw); err != nil {
		// The backend answers 404 when the course does not exist upstream.
		var herr *HTTPError
		if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
			msg := herr.RemoteMessage()
			if msg == "" {
				msg = "Course not found"
			}
			return domain.Course{}, domain.NewValidationError("stepik_url", msg)
		}
		return domain.Course{}, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return domain.Course{}, err
	}
	if inner, ok := o.lookup("course"); ok {
		if o, err = decodeObject(inner); err != nil {
			return domain.Course{}, err
		}
	}
	course := normalizeCourse(o)
	if course.ID == 0 {
		return domain.Course{}, fmt.Errorf("%w: course response without id", domain.ErrServer)
	}
	return course, nil
}

// GenerateStrategy asks the backend to generate a strategy for a course.
// It uses the longer generation timeout.
func (c *Client) GenerateStrategy(ctx context.Context, token string, userID, courseID int64) (domain.Strategy, error) {
	req := map[string]int64{"course_id": courseID}

	var raw json.RawMessage
	path := "/users/" + strconv.FormatInt(userID, 10) + "/strategies/generate/"
	if err := c.doJSON(ctx, "generate_strategy", c.generateTimeout, http.MethodPost, path, token, req, &raw); err != nil {
		return domain.Strategy{}, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return domain.Strategy{}, err
	}
	if inner, ok := o.lookup("strategy"); ok {
		if o, err = decodeObject(inner); err != nil {
			return domain.Strategy{}, err
		}
	}
	s, err := normalizeStrategy(o)
	if err != nil {
		return domain.Strategy{}, err
	}
	if s.Course.ID == 0 {
		s.Course.ID = courseID
	}
	return s, nil
}

// ListCourses returns the public course list.
func (c *Client) ListCourses(ctx context.Context) ([]domain.Course, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "list_courses", c.timeout, http.MethodGet, "/courses/", "", nil, &raw); err != nil {
		return nil, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	field, _ := o.lookup("courses", "results")
	return normalizeCourses(field)
}

// OnboardingQuestions returns the public questionnaire.
func (c *Client) OnboardingQuestions(ctx context.Context) ([]domain.OnboardingQuestion, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "onboarding_questions", c.timeout, http.MethodGet, "/onboarding/questions/", "", nil, &raw); err != nil {
		return nil, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	field, _ := o.lookup("questions")
	items, err := decodeList(field)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OnboardingQuestion, 0, len(items))
	for _, item := range items {
		qo, err := decodeObject(item)
		if err != nil {
			return nil, err
		}
		if qo == nil {
			continue
		}
		out = append(out, normalizeQuestion(qo))
	}
	return out, nil
}

// SubmitAnswers posts an answer set verbatim.
func (c *Client) SubmitAnswers(ctx context.Context, token string, answers domain.AnswerSet) (AnswersResult, error) {
	if answers == nil {
		answers = domain.AnswerSet{}
	}
	req := map[string]domain.AnswerSet{"answers": answers}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "submit_answers", c.generateTimeout, http.MethodPost, "/onboarding/answers/", token, req, &raw); err != nil {
		return AnswersResult{}, err
	}
	o, err := decodeObject(raw)
	if err != nil {
		return AnswersResult{}, err
	}
	var res AnswersResult
	if o == nil {
		return res, nil
	}
	po := o
	if inner, ok := o.lookup("profile"); ok {
		if po, err = decodeObject(inner); err != nil {
			return AnswersResult{}, err
		}
	}
	if po.has("learning_style", "learningStyle", "learningstyle") {
		p := normalizeProfile(po, 0)
		res.Profile = &p
	}
	res.StrategySummary = o.str("strategy_summary", "strategySummary", "summary")
	if res.StrategySummary == "" && res.Profile != nil && res.Profile.StrategySummary != nil {
		res.StrategySummary = *res.Profile.StrategySummary
	}
	return res, nil
}

func (c *Client) doJSON(
	ctx context.Context,
	operation string,
	timeout time.Duration,
	method, path, token string,
	body any,
	out any,
) error {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("operation", operation),
		slog.String("method", method),
		slog.String("path", path),
	)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx2); err != nil {
			return classify(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, 0, start)
		log.Warn("backend call failed", slog.String("error", redact.Error(err)))
		return classify(err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	_ = resp.Body.Close()
	c.observe(operation, resp.StatusCode, start)
	if readErr != nil {
		return classify(readErr)
	}
	if len(raw) > maxResponseBytes {
		log.Warn("backend response too large", slog.Int("status", resp.StatusCode), slog.Int("limit_bytes", maxResponseBytes))
		return fmt.Errorf("%w: %w: %s exceeded %d bytes", domain.ErrServer, ErrResponseTooLarge, operation, maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := parseHTTPError(resp.StatusCode, raw)
		log.Debug("backend returned error status", slog.Int("status", resp.StatusCode))
		return classify(herr)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrServer, operation, err)
	}
	return nil
}

func (c *Client) observe(operation string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(operation, status, time.Since(start))
}
