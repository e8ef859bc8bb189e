package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/standee-works/customizer/internal/customize"
	domain "github.com/standee-works/customizer/internal/domain"
	"github.com/standee-works/customizer/internal/platform/observability"
	"github.com/standee-works/customizer/internal/repositories"
)

var (
	// ErrOrderNotFound indicates no order exists for the given order number.
	ErrOrderNotFound = errors.New("session: order not found")
	// ErrOrderSubmitted indicates the order already carries a customization.
	ErrOrderSubmitted = errors.New("session: order already submitted")
	// ErrNothingToSubmit indicates none of the order's products resolved to
	// customizable templates.
	ErrNothingToSubmit = errors.New("session: no customizable products")
	// ErrProductIndex indicates a product or bundle-child index out of range.
	ErrProductIndex = errors.New("session: product index out of range")
)

// SessionServiceDeps bundles collaborators required to construct a session service instance.
type SessionServiceDeps struct {
	Orders    repositories.OrderRepository
	Catalog   CatalogService
	Assets    AssetStore
	Publisher SubmissionPublisher
	Logger    *zap.Logger
	Clock     func() time.Time
}

type sessionService struct {
	orders    repositories.OrderRepository
	catalog   CatalogService
	assets    AssetStore
	publisher SubmissionPublisher
	logger    *zap.Logger
	clock     func() time.Time
}

// NewSessionService constructs the service driving the customization flow.
func NewSessionService(deps SessionServiceDeps) (SessionService, error) {
	if deps.Orders == nil {
		return nil, errors.New("session service: order repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("session service: catalog service is required")
	}
	if deps.Assets == nil {
		return nil, errors.New("session service: asset store is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &sessionService{
		orders:    deps.Orders,
		catalog:   deps.Catalog,
		assets:    deps.Assets,
		publisher: deps.Publisher,
		logger:    logger,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

func (s *sessionService) Start(ctx context.Context, orderNumber string) (*Session, error) {
	order, err := s.orders.GetOrder(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if order.Submitted() {
		return nil, fmt.Errorf("%w: %s", ErrOrderSubmitted, order.OrderNumber)
	}

	session := &Session{
		Order:        order,
		BusinessName: order.BusinessName,
	}
	if err := s.resolveInto(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Debug("session started",
		zap.String("order", observability.SanitizeOrderNumber(order.OrderNumber)),
		zap.Int("products", len(session.Products)),
		zap.Int("manual", len(session.Manual)))
	return session, nil
}

func (s *sessionService) Refresh(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("session service: session is required")
	}
	return s.resolveInto(ctx, session)
}

// resolveInto matches the order's products against the catalog and installs
// fresh session products. Each call claims a generation; when the catalog
// round-trip finishes under a stale generation its result is dropped, so
// overlapping refreshes cannot overwrite a newer resolution. Editing state
// survives for products whose template did not change.
func (s *sessionService) resolveInto(ctx context.Context, session *Session) error {
	generation := atomic.AddUint64(&session.generation, 1)

	resolution, err := s.catalog.ResolveOrder(ctx, session.Order)
	if err != nil {
		return err
	}
	if atomic.LoadUint64(&session.generation) != generation {
		return nil
	}

	previous := make(map[string]*SessionProduct, len(session.Products))
	for _, product := range session.Products {
		previous[product.Template.Name] = product
	}

	quantity := session.Order.Quantity
	products := make([]*SessionProduct, 0, len(resolution.Resolved))
	for _, resolved := range resolution.Resolved {
		products = append(products, buildSessionProduct(resolved, quantity, previous[resolved.Template.Name]))
	}

	session.Products = products
	session.Manual = resolution.Manual
	if len(session.CustomerNames) != len(products) {
		session.CustomerNames = make([]string, len(products))
	}
	return nil
}

func buildSessionProduct(resolved ProductResolution, quantity int, prev *SessionProduct) *SessionProduct {
	product := &SessionProduct{
		Template: resolved.Template,
		Match:    resolved.Match,
	}

	if resolved.Template.IsBundle() {
		prevChildren := map[string]*SessionProduct{}
		if prev != nil {
			for _, child := range prev.Children {
				prevChildren[child.Template.Name] = child
			}
		}
		for _, childTemplate := range resolved.Template.Children {
			child := &SessionProduct{Template: childTemplate, Match: resolved.Match}
			if kept := prevChildren[childTemplate.Name]; kept != nil && sameShape(kept, childTemplate) {
				child.State = kept.State
			} else {
				child.State = customize.NewState(childTemplate, quantity)
			}
			product.Children = append(product.Children, child)
		}
		return product
	}

	if prev != nil && sameShape(prev, resolved.Template) {
		product.State = prev.State
		return product
	}
	product.State = customize.NewState(resolved.Template, quantity)
	return product
}

func sameShape(prev *SessionProduct, template ProductTemplate) bool {
	return prev.State != nil && prev.Template.SlotCount == template.SlotCount
}

func (s *sessionService) OrdersByPhone(ctx context.Context, phone string) (OrdersByPhoneResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return OrdersByPhoneResult{}, errors.New("session service: phone is required")
	}
	found, err := s.orders.FindByPhone(ctx, phone)
	if err != nil {
		return OrdersByPhoneResult{}, s.mapRepositoryError(err)
	}
	s.logger.Debug("orders lookup",
		zap.String("phone", observability.MaskPhone(phone)),
		zap.Int("open", len(found.Open)),
		zap.Int("submitted", len(found.Submitted)))
	return OrdersByPhoneResult{
		Phone:     phone,
		Open:      found.Open,
		Submitted: found.Submitted,
	}, nil
}

func (s *sessionService) Submit(ctx context.Context, session *Session) (SubmissionReceipt, error) {
	if session == nil {
		return SubmissionReceipt{}, errors.New("session service: session is required")
	}

	editable := flattenProducts(session.Products)
	if len(editable) == 0 {
		return SubmissionReceipt{}, fmt.Errorf("%w: order %s", ErrNothingToSubmit, session.Order.OrderNumber)
	}

	for _, product := range editable {
		if err := product.State.Validate(product.Template.Name); err != nil {
			return SubmissionReceipt{}, err
		}
	}

	if err := s.uploadPendingAssets(ctx, session.Order.OrderNumber, editable); err != nil {
		return SubmissionReceipt{}, err
	}

	var lines []domain.LineItem
	for _, product := range editable {
		lines = append(lines, product.State.Materialize()...)
	}

	payload := domain.SubmissionPayload{
		OrderID:       session.Order.OrderNumber,
		BusinessName:  session.BusinessName,
		CustomerNames: append([]string(nil), session.CustomerNames...),
		Products:      lines,
	}
	if err := s.orders.SaveCustomization(ctx, session.Order.OrderNumber, payload); err != nil {
		return SubmissionReceipt{}, s.mapRepositoryError(err)
	}

	submittedAt := s.clock()
	s.publishSubmission(ctx, session, len(lines), submittedAt)

	return SubmissionReceipt{
		OrderNumber:    session.Order.OrderNumber,
		LineItems:      len(lines),
		ManualProducts: append([]string(nil), session.Manual...),
		SubmittedAt:    submittedAt,
	}, nil
}

// uploadPendingAssets pushes every data-URI image to the asset store and
// writes the hosted URL back into the block, so materialized lines carry
// durable references. Already-uploaded assets are left alone.
func (s *sessionService) uploadPendingAssets(ctx context.Context, orderNumber string, products []*SessionProduct) error {
	for _, product := range products {
		for _, active := range product.State.ActiveBlocks(product.Template.Name) {
			if err := s.uploadAsset(ctx, orderNumber, AssetKindLogo, &active.Block.Logo); err != nil {
				return fmt.Errorf("%s: upload logo: %w", active.Label, err)
			}
			if err := s.uploadAsset(ctx, orderNumber, AssetKindUPI, &active.Block.UPI); err != nil {
				return fmt.Errorf("%s: upload payment QR: %w", active.Label, err)
			}
		}
	}
	return nil
}

func (s *sessionService) uploadAsset(ctx context.Context, orderNumber string, kind AssetKind, asset *customize.Asset) error {
	if asset.Uploaded() || strings.TrimSpace(asset.DataURI) == "" {
		return nil
	}
	url, err := s.assets.Upload(ctx, UploadAssetCommand{
		OrderNumber:  orderNumber,
		Kind:         kind,
		DataURI:      asset.DataURI,
		FilenameHint: string(kind),
	})
	if err != nil {
		return err
	}
	asset.URL = url
	return nil
}

func (s *sessionService) publishSubmission(ctx context.Context, session *Session, lineItems int, submittedAt time.Time) {
	if s.publisher == nil {
		return
	}
	event := SubmissionEvent{
		OrderNumber:  session.Order.OrderNumber,
		Phone:        session.Order.Phone,
		BusinessName: session.BusinessName,
		LineItems:    lineItems,
		Manual:       append([]string(nil), session.Manual...),
		SubmittedAt:  submittedAt,
	}
	if err := s.publisher.PublishSubmission(ctx, event); err != nil {
		s.logger.Warn("submission event publish failed",
			zap.String("order", session.Order.OrderNumber),
			zap.Error(err))
	}
}

func (s *sessionService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("session: repository unavailable: %w", err)
		}
	}
	return err
}

// flattenProducts expands bundles into their children and drops entries
// without engine state.
func flattenProducts(products []*SessionProduct) []*SessionProduct {
	var out []*SessionProduct
	for _, product := range products {
		if len(product.Children) > 0 {
			for _, child := range product.Children {
				if child.State != nil {
					out = append(out, child)
				}
			}
			continue
		}
		if product.State != nil {
			out = append(out, product)
		}
	}
	return out
}

// StateAt returns the engine state for the product at index. A childIndex of
// -1 addresses the product itself; bundle products require a child index.
func (sess *Session) StateAt(index, childIndex int) (*customize.State, error) {
	if index < 0 || index >= len(sess.Products) {
		return nil, fmt.Errorf("%w: product %d", ErrProductIndex, index)
	}
	product := sess.Products[index]

	if childIndex < 0 {
		if product.State == nil {
			return nil, fmt.Errorf("%w: product %d is a bundle, child index required", ErrProductIndex, index)
		}
		return product.State, nil
	}
	if childIndex >= len(product.Children) {
		return nil, fmt.Errorf("%w: child %d of product %d", ErrProductIndex, childIndex, index)
	}
	return product.Children[childIndex].State, nil
}

// SetCustomerName records the printed name for the product at index.
func (sess *Session) SetCustomerName(index int, name string) error {
	if index < 0 || index >= len(sess.CustomerNames) {
		return fmt.Errorf("%w: product %d", ErrProductIndex, index)
	}
	sess.CustomerNames[index] = name
	return nil
}
