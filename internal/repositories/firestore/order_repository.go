package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/standee-works/customizer/internal/domain"
	pfirestore "github.com/standee-works/customizer/internal/platform/firestore"
	"github.com/standee-works/customizer/internal/repositories"
)

type orderDocument struct {
	OrderNumber       string         `firestore:"orderNumber"`
	CustomerName      string         `firestore:"customerName"`
	Phone             string         `firestore:"phone"`
	BusinessName      string         `firestore:"businessName"`
	ProductNames      []string       `firestore:"productNames"`
	Quantity          int            `firestore:"quantity"`
	TotalPrice        int64          `firestore:"totalPrice"`
	Currency          string         `firestore:"currency"`
	PaymentStatus     string         `firestore:"paymentStatus"`
	FulfillmentStatus string         `firestore:"fulfillmentStatus"`
	Customizations    map[string]any `firestore:"customizations"`
	LogoURL           string         `firestore:"logoUrl"`
	ConfirmImageURL   string         `firestore:"confirmImg"`
	CreatedAt         time.Time      `firestore:"createdAt"`
}

// OrderRepository reads purchased orders and records customizations in Firestore.
type OrderRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[orderDocument]
	now      func() time.Time
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// OrderRepositoryOption customises the repository.
type OrderRepositoryOption func(*OrderRepository)

// WithOrderClock injects a custom clock primarily for tests.
func WithOrderClock(clock func() time.Time) OrderRepositoryOption {
	return func(r *OrderRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider, collection string, opts ...OrderRepositoryOption) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("order repository requires a collection name")
	}
	repo := &OrderRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[orderDocument](provider, collection, nil, nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// GetOrder returns the order carrying the given storefront order number.
func (r *OrderRepository) GetOrder(ctx context.Context, orderNumber string) (domain.CustomerOrder, error) {
	doc, err := r.findByOrderNumber(ctx, orderNumber)
	if err != nil {
		return domain.CustomerOrder{}, err
	}
	return toCustomerOrder(doc), nil
}

// FindByPhone lists every order placed under the phone number, most recent
// first, split into open and already-submitted sets.
func (r *OrderRepository) FindByPhone(ctx context.Context, phone string) (repositories.PhoneOrders, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return repositories.PhoneOrders{}, errors.New("order repository: phone is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("phone", "==", phone).OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return repositories.PhoneOrders{}, err
	}

	var out repositories.PhoneOrders
	for _, doc := range docs {
		order := toCustomerOrder(doc)
		if order.Submitted() {
			out.Submitted = append(out.Submitted, order)
		} else {
			out.Open = append(out.Open, order)
		}
	}
	return out, nil
}

// SaveCustomization merges the payload into the order document inside a
// transaction. Per-product entries overwrite their previous value while
// untouched products keep theirs, and the order-level logo and QR references
// record the payload's last uploaded URLs so the order reads as submitted.
func (r *OrderRepository) SaveCustomization(ctx context.Context, orderID string, payload domain.SubmissionPayload) error {
	doc, err := r.findByOrderNumber(ctx, orderID)
	if err != nil {
		return err
	}
	ref, err := r.base.DocumentRef(ctx, doc.ID)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var current orderDocument
		if err := snap.DataTo(&current); err != nil {
			return err
		}

		merged := mergeCustomizations(current.Customizations, payload.Products, current.LogoURL, current.ConfirmImageURL)

		updates := map[string]any{
			"customizations": merged,
			"submittedAt":    r.now().UTC(),
		}
		if strings.TrimSpace(payload.BusinessName) != "" {
			updates["businessName"] = payload.BusinessName
		}
		if name := firstNonEmpty(payload.CustomerNames); name != "" {
			updates["customerName"] = name
		}
		if logo := lastUploadedLogo(payload.Products); logo != "" {
			updates["logoUrl"] = logo
		}
		if upi := lastUploadedQR(payload.Products); upi != "" {
			updates["confirmImg"] = upi
		}

		return tx.Set(ref, updates, firestore.MergeAll)
	})
}

func (r *OrderRepository) findByOrderNumber(ctx context.Context, orderNumber string) (pfirestore.Document[orderDocument], error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return pfirestore.Document[orderDocument]{}, errors.New("order repository: order number is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("orderNumber", "==", orderNumber).Limit(1)
	})
	if err != nil {
		return pfirestore.Document[orderDocument]{}, err
	}
	if len(docs) == 0 {
		return pfirestore.Document[orderDocument]{}, pfirestore.WrapError("orders.get",
			status.Errorf(codes.NotFound, "order %s not found", orderNumber))
	}
	return docs[0], nil
}

// mergeCustomizations rebuilds the per-product customization map. Each line
// item replaces the entry for its product name; a missing logo or QR URL
// falls back to the previous entry, then to the order-level references.
func mergeCustomizations(existing map[string]any, lines []domain.LineItem, prevLogo, prevQR string) map[string]any {
	merged := make(map[string]any, len(existing)+len(lines))
	for key, value := range existing {
		merged[key] = value
	}

	for _, line := range lines {
		key := strings.TrimSpace(line.ProductName)
		if key == "" {
			key = "default"
		}

		var prevEntry map[string]any
		if entry, ok := merged[key].(map[string]any); ok {
			prevEntry = entry
		}

		logo := line.LogoURL
		if logo == "" {
			logo = stringField(prevEntry, "logo_url")
		}
		if logo == "" {
			logo = prevLogo
		}
		qr := line.ConfirmImageURL
		if qr == "" {
			qr = stringField(prevEntry, "upi_url")
		}
		if qr == "" {
			qr = prevQR
		}

		icons := make([]any, len(line.Icons))
		for i, icon := range line.Icons {
			icons[i] = icon
		}

		entry := map[string]any{
			"icons":    icons,
			"logo_url": logo,
			"upi_url":  qr,
		}
		if len(line.Members) > 0 {
			members := make([]any, len(line.Members))
			for i, m := range line.Members {
				members[i] = m
			}
			entry["members"] = members
		}
		if line.ItemNo > 0 {
			entry["item_no"] = line.ItemNo
		}
		if line.Quantity > 0 {
			entry["quantity"] = line.Quantity
		}
		merged[key] = entry
	}
	return merged
}

func stringField(entry map[string]any, key string) string {
	if entry == nil {
		return ""
	}
	if value, ok := entry[key].(string); ok {
		return value
	}
	return ""
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func lastUploadedLogo(lines []domain.LineItem) string {
	last := ""
	for _, line := range lines {
		if isHostedURL(line.LogoURL) {
			last = line.LogoURL
		}
	}
	return last
}

func lastUploadedQR(lines []domain.LineItem) string {
	last := ""
	for _, line := range lines {
		if isHostedURL(line.ConfirmImageURL) {
			last = line.ConfirmImageURL
		}
	}
	return last
}

// isHostedURL filters out data URIs so an unfinished upload never marks the
// order submitted.
func isHostedURL(ref string) bool {
	trimmed := strings.TrimSpace(ref)
	return trimmed != "" && !strings.HasPrefix(trimmed, "data:")
}

func toCustomerOrder(doc pfirestore.Document[orderDocument]) domain.CustomerOrder {
	data := doc.Data
	return domain.CustomerOrder{
		ID:                doc.ID,
		OrderNumber:       data.OrderNumber,
		CustomerName:      data.CustomerName,
		Phone:             data.Phone,
		BusinessName:      data.BusinessName,
		ProductNames:      append([]string(nil), data.ProductNames...),
		Quantity:          data.Quantity,
		TotalPrice:        data.TotalPrice,
		Currency:          data.Currency,
		PaymentStatus:     data.PaymentStatus,
		FulfillmentStatus: data.FulfillmentStatus,
		LogoURL:           data.LogoURL,
		ConfirmImageURL:   data.ConfirmImageURL,
		CreatedAt:         data.CreatedAt,
	}
}
