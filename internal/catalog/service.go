package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/imagestore"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/validation"
)

var ErrImagesUnavailable = errors.New("image store not configured")

// loadTimeout bounds a shared store read, which runs detached from the caller
// that started it.
const loadTimeout = 5 * time.Second

type Store interface {
	List(ctx context.Context, params Params) (PagedList, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Filters(ctx context.Context) (Filters, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

type ImageStore interface {
	Upload(ctx context.Context, filename string, body io.Reader) (imagestore.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// Upload is an image attached to a create or update request.
type Upload struct {
	Filename string
	Body     io.Reader
}

type Service struct {
	store     Store
	cache     Cache
	images    ImageStore
	validator *validation.Validator
	logger    *log.Logger
	group     singleflight.Group
}

// NewService wires the catalog. cache and images may be nil.
func NewService(store Store, cache Cache, images ImageStore, logger *log.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		store:     store,
		cache:     cache,
		images:    images,
		validator: validation.New(),
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, params Params) (PagedList, error) {
	return s.store.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	if p, err := s.cache.GetProduct(ctx, id); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Printf("catalog cache read failed for product %d: %v", id, err)
	}

	v, err := s.load(ctx, "product:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		p, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetProduct(ctx, p); err != nil {
			s.logger.Printf("catalog cache write failed for product %d: %v", id, err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*Product)
	return &p, nil
}

func (s *Service) Filters(ctx context.Context) (Filters, error) {
	if f, err := s.cache.GetFilters(ctx); err == nil {
		return *f, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Printf("catalog cache read failed for filters: %v", err)
	}

	v, err := s.load(ctx, "filters", func(ctx context.Context) (any, error) {
		f, err := s.store.Filters(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetFilters(ctx, &f); err != nil {
			s.logger.Printf("catalog cache write failed for filters: %v", err)
		}
		return f, nil
	})
	if err != nil {
		return Filters{}, err
	}
	return v.(Filters), nil
}

func (s *Service) Create(ctx context.Context, in ProductInput, upload *Upload) (*Product, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	p := &Product{}
	in.apply(p)

	if upload != nil {
		img, err := s.upload(ctx, upload)
		if err != nil {
			return nil, err
		}
		p.ImageURL, p.PublicID = img.URL, img.PublicID
	}

	if err := s.store.Create(ctx, p); err != nil {
		if p.PublicID != "" {
			s.deleteImage(ctx, p.PublicID)
		}
		return nil, err
	}

	s.Invalidate(ctx, p.ID)
	return p, nil
}

// Update replaces the editable fields of a product. A new upload replaces the
// stored image and the old one is removed after the row is saved.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput, upload *Upload) (*Product, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)

	oldPublicID := ""
	if upload != nil {
		img, err := s.upload(ctx, upload)
		if err != nil {
			return nil, err
		}
		oldPublicID = p.PublicID
		p.ImageURL, p.PublicID = img.URL, img.PublicID
	}

	if err := s.store.Update(ctx, p); err != nil {
		if upload != nil {
			s.deleteImage(ctx, p.PublicID)
		}
		return nil, err
	}

	if oldPublicID != "" {
		s.deleteImage(ctx, oldPublicID)
	}
	s.Invalidate(ctx, p.ID)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if p.PublicID != "" {
		s.deleteImage(ctx, p.PublicID)
	}
	s.Invalidate(ctx, id)
	return nil
}

// load runs fn once per key across concurrent callers. Each caller still stops
// waiting when its own ctx is done.
func (s *Service) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops cached entries for the given products. Failures are logged;
// entries expire on their own.
func (s *Service) Invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Printf("catalog cache invalidate failed for %v: %v", ids, err)
	}
}

func (s *Service) validate(in ProductInput) error {
	verrs, err := s.validator.Struct(in)
	if err != nil {
		return err
	}
	return verrs.OrNil()
}

func (s *Service) upload(ctx context.Context, u *Upload) (imagestore.Image, error) {
	if s.images == nil {
		return imagestore.Image{}, ErrImagesUnavailable
	}
	img, err := s.images.Upload(ctx, u.Filename, u.Body)
	if err != nil {
		return imagestore.Image{}, fmt.Errorf("upload image: %w", err)
	}
	return img, nil
}

func (s *Service) deleteImage(ctx context.Context, publicID string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.logger.Printf("image delete failed for %s: %v", publicID, err)
	}
}
