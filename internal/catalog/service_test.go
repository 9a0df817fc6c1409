package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/imagestore"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/validation"
)

type fakeStore struct {
	products  map[int64]*Product
	nextID    int64
	gets      int
	filters   int
	updateErr error
}

func newFakeStore(ps ...Product) *fakeStore {
	s := &fakeStore{products: map[int64]*Product{}, nextID: 100}
	for _, p := range ps {
		p := p
		s.products[p.ID] = &p
	}
	return s
}

func (s *fakeStore) List(context.Context, Params) (PagedList, error) { return PagedList{}, nil }

func (s *fakeStore) Get(_ context.Context, id int64) (*Product, error) {
	s.gets++
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) Filters(context.Context) (Filters, error) {
	s.filters++
	return Filters{Brands: []string{"Angular"}, Types: []string{"Boots"}}, nil
}

func (s *fakeStore) Create(_ context.Context, p *Product) error {
	s.nextID++
	p.ID = s.nextID
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *fakeStore) Update(_ context.Context, p *Product) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

type fakeImages struct {
	uploaded []string
	deleted  []string
}

func (f *fakeImages) Upload(_ context.Context, filename string, body io.Reader) (imagestore.Image, error) {
	if _, err := io.ReadAll(body); err != nil {
		return imagestore.Image{}, err
	}
	f.uploaded = append(f.uploaded, filename)
	id := "img-" + filename
	return imagestore.Image{URL: "https://images.test/" + id, PublicID: id}, nil
}

func (f *fakeImages) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

type memCache struct {
	products    map[int64]*Product
	filters     *Filters
	invalidated [][]int64
}

func newMemCache() *memCache { return &memCache{products: map[int64]*Product{}} }

func (c *memCache) GetProduct(_ context.Context, id int64) (*Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	cp := *p
	return &cp, nil
}

func (c *memCache) SetProduct(_ context.Context, p *Product) error {
	cp := *p
	c.products[p.ID] = &cp
	return nil
}

func (c *memCache) GetFilters(context.Context) (*Filters, error) {
	if c.filters == nil {
		return nil, ErrCacheMiss
	}
	return c.filters, nil
}

func (c *memCache) SetFilters(_ context.Context, f *Filters) error {
	c.filters = f
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ids ...int64) error {
	c.invalidated = append(c.invalidated, ids)
	for _, id := range ids {
		delete(c.products, id)
	}
	c.filters = nil
	return nil
}

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func validInput() ProductInput {
	return ProductInput{
		Name:        "Blue Boots",
		Description: "Warm",
		Price:       15000,
		Type:        "Boots",
		Brand:       "Angular",
		QtyInStock:  10,
	}
}

func TestServiceGetUsesCache(t *testing.T) {
	store := newFakeStore(Product{ID: 1, Name: "Hat", Price: 1000})
	cache := newMemCache()
	svc := NewService(store, cache, nil, discardLogger())

	for i := 0; i < 3; i++ {
		p, err := svc.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Hat", p.Name)
	}
	assert.Equal(t, 1, store.gets)
}

func TestServiceGetNotFound(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil, discardLogger())

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceFiltersCached(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newMemCache(), nil, discardLogger())

	f1, err := svc.Filters(context.Background())
	require.NoError(t, err)
	f2, err := svc.Filters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Equal(t, 1, store.filters)
}

func TestServiceCreate(t *testing.T) {
	tests := []struct {
		name       string
		input      func() ProductInput
		upload     *Upload
		wantFields []string
		wantImage  bool
	}{
		{
			name:  "without image",
			input: validInput,
		},
		{
			name:      "with image",
			input:     validInput,
			upload:    &Upload{Filename: "boots.png", Body: bytes.NewReader([]byte("png"))},
			wantImage: true,
		},
		{
			name: "invalid input reports every field",
			input: func() ProductInput {
				in := validInput()
				in.Name = ""
				in.Price = 50
				in.QtyInStock = 500
				return in
			},
			wantFields: []string{"name", "price", "quantityInStock"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			images := &fakeImages{}
			cache := newMemCache()
			svc := NewService(store, cache, images, discardLogger())

			p, err := svc.Create(context.Background(), tt.input(), tt.upload)

			if tt.wantFields != nil {
				var verrs *validation.Errors
				require.ErrorAs(t, err, &verrs)
				for _, f := range tt.wantFields {
					assert.Contains(t, verrs.Fields, f)
				}
				assert.Empty(t, store.products)
				assert.Empty(t, images.uploaded)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, store.products, p.ID)
			assert.Len(t, cache.invalidated, 1)
			if tt.wantImage {
				assert.Equal(t, "img-boots.png", p.PublicID)
				assert.True(t, strings.HasSuffix(p.ImageURL, "img-boots.png"))
			} else {
				assert.Empty(t, p.PublicID)
			}
		})
	}
}

func TestServiceCreateImageWithoutStore(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil, discardLogger())

	_, err := svc.Create(context.Background(), validInput(),
		&Upload{Filename: "a.png", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrImagesUnavailable)
}

func TestServiceUpdateReplacesImage(t *testing.T) {
	store := newFakeStore(Product{ID: 5, Name: "Old", PublicID: "old-img", ImageURL: "u"})
	images := &fakeImages{}
	cache := newMemCache()
	svc := NewService(store, cache, images, discardLogger())

	p, err := svc.Update(context.Background(), 5, validInput(),
		&Upload{Filename: "new.png", Body: strings.NewReader("x")})
	require.NoError(t, err)

	assert.Equal(t, "Blue Boots", p.Name)
	assert.Equal(t, "img-new.png", p.PublicID)
	assert.Equal(t, []string{"old-img"}, images.deleted)
	assert.Equal(t, [][]int64{{5}}, cache.invalidated)
}

func TestServiceUpdateFailureKeepsOldImage(t *testing.T) {
	store := newFakeStore(Product{ID: 5, PublicID: "old-img"})
	store.updateErr = errors.New("boom")
	images := &fakeImages{}
	svc := NewService(store, nil, images, discardLogger())

	_, err := svc.Update(context.Background(), 5, validInput(),
		&Upload{Filename: "new.png", Body: strings.NewReader("x")})
	require.Error(t, err)

	// the freshly uploaded image is removed, the stored one is untouched
	assert.Equal(t, []string{"img-new.png"}, images.deleted)
	assert.Equal(t, "old-img", store.products[5].PublicID)
}

func TestServiceUpdateMissing(t *testing.T) {
	svc := NewService(newFakeStore(), nil, &fakeImages{}, discardLogger())

	_, err := svc.Update(context.Background(), 9, validInput(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	store := newFakeStore(Product{ID: 3, PublicID: "pic"})
	images := &fakeImages{}
	cache := newMemCache()
	svc := NewService(store, cache, images, discardLogger())

	require.NoError(t, svc.Delete(context.Background(), 3))

	assert.NotContains(t, store.products, int64(3))
	assert.Equal(t, []string{"pic"}, images.deleted)
	assert.Equal(t, [][]int64{{3}}, cache.invalidated)

	assert.ErrorIs(t, svc.Delete(context.Background(), 3), ErrNotFound)
}

// gatedStore blocks Get until release is closed and fails with the context
// error it was handed.
type gatedStore struct {
	*fakeStore
	started chan struct{}
	release chan struct{}
	loads   atomic.Int32
}

func (s *gatedStore) Get(ctx context.Context, id int64) (*Product, error) {
	s.loads.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := *s.products[id]
	return &cp, nil
}

func TestGetSharedLoadOutlivesCancelledCaller(t *testing.T) {
	store := &gatedStore{
		fakeStore: newFakeStore(Product{ID: 1, Name: "Hat"}),
		started:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	svc := NewService(store, nil, nil, log.New(io.Discard, "", 0))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Get(firstCtx, 1)
		firstErr <- err
	}()
	<-store.started

	type result struct {
		p   *Product
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := svc.Get(context.Background(), 1)
		second <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(store.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "Hat", res.p.Name)
	assert.Equal(t, int32(1), store.loads.Load())
}
