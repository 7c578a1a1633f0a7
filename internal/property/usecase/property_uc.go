package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/mailer"
	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// Event subjects emitted by the directory service.
const (
	EventPropertyCreated = "property.created"
	EventPropertyViewed  = "property.viewed"
	EventContactRequest  = "property.contact_requested"
)

// Cache is the read-through property cache. All implementations must
// treat Invalidate as mandatory after any mutation, counter increments
// included.
type Cache interface {
	Get(ctx context.Context, id string) (*domain.Property, error)
	Set(ctx context.Context, property *domain.Property) error
	Invalidate(ctx context.Context, id string) error
}

// Publisher emits directory events. Failures are logged, never
// surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, subject string, event domain.PropertyEvent) error
}

// PropertyUsecase implements the property directory service: CRUD over
// listings plus the two monotonic counters. Deleting a listing does
// not remove the uploaded image files it references.
type PropertyUsecase struct {
	repo      domain.PropertyRepository
	cache     Cache
	publisher Publisher
	mailer    mailer.Mailer
	logger    *zap.Logger
}

func NewPropertyUsecase(repo domain.PropertyRepository, cache Cache, publisher Publisher, m mailer.Mailer, logger *zap.Logger) *PropertyUsecase {
	return &PropertyUsecase{repo: repo, cache: cache, publisher: publisher, mailer: m, logger: logger}
}

func (uc *PropertyUsecase) List(ctx context.Context) ([]*domain.Property, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *PropertyUsecase) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		if err != nil {
			uc.logger.Warn("cache read failed", zap.String("property_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	property, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, property); err != nil {
			uc.logger.Warn("cache write failed", zap.String("property_id", id), zap.Error(err))
		}
	}
	return property, nil
}

func (uc *PropertyUsecase) Create(ctx context.Context, property *domain.Property) (*domain.Property, error) {
	property.Views = 0
	property.ContactRequests = 0
	if err := uc.repo.Create(ctx, property); err != nil {
		uc.logger.Error("failed to create property", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("property created", zap.String("property_id", property.ID), zap.String("title", property.Title))
	uc.publish(ctx, EventPropertyCreated, domain.PropertyEvent{PropertyID: property.ID, Title: property.Title})
	return property, nil
}

// Update is a full replace of the mutable fields. Counters and
// creation metadata are carried over from the stored record.
func (uc *PropertyUsecase) Update(ctx context.Context, id string, fields *domain.Property) (*domain.Property, error) {
	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields.ID = existing.ID
	fields.Views = existing.Views
	fields.ContactRequests = existing.ContactRequests
	fields.CreatedAt = existing.CreatedAt
	if fields.Images == nil {
		fields.Images = []string{}
	}
	if err := uc.repo.Update(ctx, fields); err != nil {
		uc.logger.Error("failed to update property", zap.String("property_id", id), zap.Error(err))
		return nil, err
	}
	uc.invalidate(ctx, id)
	return fields, nil
}

func (uc *PropertyUsecase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.logger.Info("property deleted", zap.String("property_id", id))
	return nil
}

func (uc *PropertyUsecase) IncrementViews(ctx context.Context, id string) (int64, error) {
	views, err := uc.repo.IncrementViews(ctx, id)
	if err != nil {
		return 0, err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, EventPropertyViewed, domain.PropertyEvent{PropertyID: id, Views: views})
	return views, nil
}

func (uc *PropertyUsecase) IncrementContactRequests(ctx context.Context, id string) (int64, error) {
	requests, err := uc.repo.IncrementContactRequests(ctx, id)
	if err != nil {
		return 0, err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, EventContactRequest, domain.PropertyEvent{PropertyID: id, ContactRequests: requests})
	uc.notifyAgent(ctx, id)
	return requests, nil
}

func (uc *PropertyUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.logger.Warn("cache invalidation failed", zap.String("property_id", id), zap.Error(err))
	}
}

func (uc *PropertyUsecase) publish(ctx context.Context, subject string, event domain.PropertyEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// notifyAgent emails the listing's agent off the request path.
func (uc *PropertyUsecase) notifyAgent(ctx context.Context, id string) {
	if uc.mailer == nil {
		return
	}
	property, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.logger.Warn("agent notification lookup failed", zap.String("property_id", id), zap.Error(err))
		return
	}
	go func() {
		if err := uc.mailer.SendContactRequestEmail(property); err != nil {
			uc.logger.Warn("agent notification failed", zap.String("property_id", id), zap.Error(err))
		}
	}()
}
