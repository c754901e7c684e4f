package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/supplylens/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu          sync.Mutex
	data        map[string][]byte
	getError    error
	setError    error
	getCalls    int
	setCalls    int
	clearCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalled = true
	m.data = make(map[string][]byte)
	return nil
}

// MockPageFetcher is a mock implementation of domain.PageFetcher
type MockPageFetcher struct {
	html  string
	err   error
	calls int
}

func (m *MockPageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	return m.html, nil
}

// MockRenderer is a mock implementation of domain.Renderer
type MockRenderer struct {
	page  *domain.RenderedPage
	err   error
	calls int
}

func (m *MockRenderer) Render(ctx context.Context, pageURL string) (*domain.RenderedPage, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	saved   []*domain.ExtractedProduct
	saveErr error
	id      string
}

func (m *MockProductRepository) Save(ctx context.Context, product *domain.ExtractedProduct) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, product)
	return m.id, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.ExtractedProduct, error) {
	for _, p := range m.saved {
		if m.id == id {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// stubStrategy returns a canned result and records its calls
type stubStrategy struct {
	name    string
	product *domain.ExtractedProduct
	err     error
	// wait blocks until the strategy context is done
	wait  bool
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, _ string, _ *PageSource) (*domain.ExtractedProduct, error) {
	s.calls++
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.product, s.err
}

// recordingObserver collects strategy outcomes and cache lookups
type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	hits     []bool
}

func (o *recordingObserver) ObserveStrategy(strategy, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, strategy+":"+outcome)
}

func (o *recordingObserver) ObserveCacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits = append(o.hits, hit)
}
