package reviews

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/jvales/shopstate/pkg/errors"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
)

// Review is a single product review. Reviews are stored per product,
// newest first.
type Review struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

// AddInput carries a new review submission.
type AddInput struct {
	Author  string
	Rating  int
	Comment string
}

type stateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}

// ServiceParams groups dependencies for the review manager.
type ServiceParams struct {
	Store  stateStore
	Logger *logger.Logger
	Now    func() time.Time
}

// Service reads and appends per-product reviews. The keyspace is dynamic
// (one store key per product), so state is loaded per call rather than
// held in memory.
type Service interface {
	List(ctx context.Context, productID string) ([]Review, error)
	Add(ctx context.Context, productID string, input AddInput) (Review, error)
}

type service struct {
	mu    sync.Mutex
	store stateStore
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: params.Store, logg: params.Logger, now: now}, nil
}

// List returns the reviews for a product, newest first.
func (s *service) List(ctx context.Context, productID string) ([]Review, error) {
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, productID)
}

// Add prepends a review to the product's list. A blank author falls back
// to Anonymous.
func (s *service) Add(ctx context.Context, productID string, input AddInput) (Review, error) {
	if productID == "" {
		return Review{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return Review{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return Review{}, pkgerrors.New(pkgerrors.CodeValidation, "comment cannot be empty")
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = "Anonymous"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, productID)
	if err != nil {
		return Review{}, err
	}

	review := Review{
		ID:      uuid.NewString(),
		Author:  author,
		Rating:  input.Rating,
		Comment: comment,
		Date:    s.now().Format("1/2/2006"),
	}

	updated := append([]Review{review}, existing...)
	if err := s.store.Put(ctx, kv.ReviewsKey(productID), updated); err != nil {
		return Review{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist reviews")
	}
	return review, nil
}

func (s *service) load(ctx context.Context, productID string) ([]Review, error) {
	var list []Review
	if _, err := s.store.Get(ctx, kv.ReviewsKey(productID), &list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}
	return list, nil
}
