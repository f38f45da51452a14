package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/reqres-client/pkg/cache"
	"github.com/Sternrassler/reqres-client/pkg/client"
	"github.com/Sternrassler/reqres-client/pkg/logging"
	"github.com/Sternrassler/reqres-client/pkg/pagination"
)

const (
	operationGetUser  = "get_user"
	operationAllUsers = "get_all_users"
)

// userLookupsTotal counts service calls by operation and outcome.
var userLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reqres_user_lookups_total",
	Help: "Total user service calls by operation and outcome",
}, []string{"operation", "outcome"}) // outcome: cache_hit, fetched, absent, error

// DefaultCacheTTL applies when Config.CacheTTL is zero.
const DefaultCacheTTL = 300 * time.Second

// Transport performs GET requests relative to the API base URL.
// *client.Client implements it.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (*client.Response, error)
}

// Config holds service settings.
type Config struct {
	// CacheTTL is how long successful results stay cached.
	CacheTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the default component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service resolves users through a cache in front of the API.
// It is safe for concurrent use.
type Service struct {
	transport Transport
	cache     cache.Cache
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewService creates a user service.
func NewService(transport Transport, c cache.Cache, cfg Config, opts ...Option) (*Service, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cache ttl must be positive (got %v)", ttl)
	}

	s := &Service{
		transport: transport,
		cache:     c,
		ttl:       ttl,
		logger:    logging.NewLogger("user-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetUserByID returns the user with the given id. found is false when the API
// reports 404 or returns no user payload; neither case is cached.
func (s *Service) GetUserByID(ctx context.Context, id int) (u User, found bool, err error) {
	key := cache.UserKey(id)

	var cached User
	if s.fromCache(ctx, key, &cached) {
		s.logger.Debug().Int(logging.FieldUserID, id).Msg("Cached user")
		userLookupsTotal.WithLabelValues(operationGetUser, "cache_hit").Inc()
		return cached, true, nil
	}

	defer func() {
		outcome := "fetched"
		switch {
		case err != nil:
			outcome = "error"
		case !found:
			outcome = "absent"
		}
		userLookupsTotal.WithLabelValues(operationGetUser, outcome).Inc()
	}()

	resp, err := s.transport.Get(ctx, "users/"+strconv.Itoa(id), nil)
	if err != nil {
		s.logger.Error().Err(err).Int(logging.FieldUserID, id).Msg("Transport failure while getting user")
		return User{}, false, &TransportError{Cause: err}
	}

	switch {
	case isSuccess(resp.StatusCode):
		var envelope singleUserResponse
		if err := json.Unmarshal(resp.Body, &envelope); err != nil {
			s.logger.Error().Err(err).Int(logging.FieldUserID, id).Msg("Undecodable user response")
			return User{}, false, fmt.Errorf("user %d: %w: %v", id, ErrMalformedResponse, err)
		}
		if envelope.Data == nil {
			s.logger.Warn().Int(logging.FieldUserID, id).Msg("No data for user")
			return User{}, false, nil
		}

		user := MapUser(*envelope.Data)
		s.store(ctx, key, user)
		return user, true, nil

	case resp.StatusCode == http.StatusNotFound:
		s.logger.Warn().Int(logging.FieldUserID, id).Msg("User not found")
		return User{}, false, nil

	default:
		s.logger.Error().
			Int(logging.FieldUserID, id).
			Int(logging.FieldStatusCode, resp.StatusCode).
			Msg("Failed to get user")
		return User{}, false, &RequestError{StatusCode: resp.StatusCode}
	}
}

// GetAllUsers returns every user across all pages in server order.
//
// A page without a data field stops the walk and whatever was gathered is
// returned and cached. Any error discards the partial result.
func (s *Service) GetAllUsers(ctx context.Context) ([]User, error) {
	var cached []User
	if s.fromCache(ctx, cache.AllUsersKey, &cached) {
		s.logger.Debug().Int("count", len(cached)).Msg("Returning cached all users")
		userLookupsTotal.WithLabelValues(operationAllUsers, "cache_hit").Inc()
		return cached, nil
	}

	users, err := pagination.Drain(ctx, s.fetchPage, s.logger)
	if err != nil {
		userLookupsTotal.WithLabelValues(operationAllUsers, "error").Inc()
		return nil, fmt.Errorf("get all users: %w", err)
	}

	s.store(ctx, cache.AllUsersKey, users)
	userLookupsTotal.WithLabelValues(operationAllUsers, "fetched").Inc()
	return users, nil
}

// fetchPage requests and maps one page of users.
func (s *Service) fetchPage(ctx context.Context, page int) (pagination.Page[User], error) {
	resp, err := s.transport.Get(ctx, "users", url.Values{"page": []string{strconv.Itoa(page)}})
	if err != nil {
		return pagination.Page[User]{}, &TransportError{Cause: err}
	}

	if !isSuccess(resp.StatusCode) {
		s.logger.Error().
			Int(logging.FieldPage, page).
			Int(logging.FieldStatusCode, resp.StatusCode).
			Msg("Error while fetching paged users")
		return pagination.Page[User]{}, &RequestError{StatusCode: resp.StatusCode}
	}

	var envelope PagedUserResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return pagination.Page[User]{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if envelope.Data == nil {
		return pagination.Page[User]{Number: page}, nil
	}

	users := make([]User, 0, len(*envelope.Data))
	for _, dto := range *envelope.Data {
		users = append(users, MapUser(dto))
	}

	return pagination.Page[User]{
		Number:     page,
		TotalPages: envelope.TotalPages,
		Items:      users,
		HasData:    true,
	}, nil
}

// fromCache decodes a cached value into dst. Cache failures count as a miss.
func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	data, ok, err := s.cache.TryGet(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str(logging.FieldCacheKey, key).Msg("Cache get error")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn().Err(err).Str(logging.FieldCacheKey, key).Msg("Cached value undecodable")
		return false
	}
	return true
}

// store caches v for the configured TTL. Failures are logged only.
func (s *Service) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn().Err(err).Str(logging.FieldCacheKey, key).Msg("Failed to encode cache value")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str(logging.FieldCacheKey, key).Msg("Failed to cache value")
		return
	}
	s.logger.Debug().
		Str(logging.FieldCacheKey, key).
		Dur("ttl", s.ttl).
		Msg("Cached value")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
