package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domcategory "example.com/storefront/internal/domain/category"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
	authuc "example.com/storefront/internal/usecase/auth"
)

// envelope is the {success, message} pair most endpoints wrap their payload in.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (e envelope) status() envelope { return e }

func (e envelope) rejected() bool {
	return e.Success != nil && !*e.Success
}

type enveloped interface {
	status() envelope
}

// flexInt accepts 1, 1.0 and "1".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = flexInt(int(fl))
	return nil
}

type remoteUser struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      flexInt   `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type authResponse struct {
	envelope
	User  *remoteUser `json:"user"`
	Token string      `json:"token"`
}

func (r authResponse) credentials() *authuc.Credentials {
	creds := &authuc.Credentials{Token: r.Token}
	if r.User != nil {
		creds.Account = authuc.Account{
			ID:        r.User.ID,
			Name:      r.User.Name,
			Email:     r.User.Email,
			Phone:     r.User.Phone,
			Address:   r.User.Address,
			Role:      domuser.Role(r.User.Role),
			CreatedAt: r.User.CreatedAt,
		}
	}
	return creds
}

type remoteCategory struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r remoteCategory) toDomain() *domcategory.Category {
	return &domcategory.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type remoteProduct struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    json.RawMessage `json:"category"`
	Stock       *int            `json:"stock"`
	Quantity    *int            `json:"quantity"`
	Shipping    *bool           `json:"shipping"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// toDomain maps the API product. The category may arrive populated (an
// object) or as a bare id; products without a shipping flag count as featured.
func (r remoteProduct) toDomain(photoURL func(id string) string) (*domproduct.Product, error) {
	p := &domproduct.Product{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    photoURL(r.ID),
		Featured:    true,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	switch {
	case r.Stock != nil:
		p.Stock = *r.Stock
	case r.Quantity != nil:
		p.Stock = *r.Quantity
	}
	if r.Shipping != nil {
		p.Featured = *r.Shipping
	}

	raw := bytes.TrimSpace(r.Category)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var c remoteCategory
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("product %s category: %w", r.ID, err)
		}
		p.CategoryID = c.ID
		p.Category = c.toDomain()
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("product %s category: %w", r.ID, err)
		}
	default:
		return nil, fmt.Errorf("product %s category: unexpected %s", r.ID, raw)
	}
	return p, nil
}
