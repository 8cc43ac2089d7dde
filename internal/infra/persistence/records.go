package persistence

import (
	"time"

	"github.com/shopspring/decimal"

	domcart "example.com/storefront/internal/domain/cart"
	domcategory "example.com/storefront/internal/domain/category"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
)

type categoryRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type productRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug,omitempty"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CategoryID  string          `json:"category_id,omitempty"`
	Category    *categoryRecord `json:"category,omitempty"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type lineRecord struct {
	Product  productRecord `json:"product"`
	Quantity int           `json:"quantity"`
}

type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toLineRecords(lines []domcart.Line) []lineRecord {
	out := make([]lineRecord, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineRecord{Product: toProductRecord(l.Product), Quantity: l.Quantity})
	}
	return out
}

func fromLineRecords(records []lineRecord) []domcart.Line {
	out := make([]domcart.Line, 0, len(records))
	for _, r := range records {
		out = append(out, domcart.Line{Product: r.Product.toDomain(), Quantity: r.Quantity})
	}
	return out
}

func toProductRecord(p domproduct.Product) productRecord {
	rec := productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		Stock:       p.Stock,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		rec.Category = &categoryRecord{
			ID:          p.Category.ID,
			Name:        p.Category.Name,
			Slug:        p.Category.Slug,
			Description: p.Category.Description,
			CreatedAt:   p.Category.CreatedAt,
			UpdatedAt:   p.Category.UpdatedAt,
		}
	}
	return rec
}

func (r productRecord) toDomain() domproduct.Product {
	p := domproduct.Product{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		CategoryID:  r.CategoryID,
		Stock:       r.Stock,
		Featured:    r.Featured,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Category != nil {
		p.Category = &domcategory.Category{
			ID:          r.Category.ID,
			Name:        r.Category.Name,
			Slug:        r.Category.Slug,
			Description: r.Category.Description,
			CreatedAt:   r.Category.CreatedAt,
			UpdatedAt:   r.Category.UpdatedAt,
		}
	}
	return p
}

func toUserRecord(u domuser.User) userRecord {
	return userRecord{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Phone:     u.Phone,
		Address:   u.Address,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func (r userRecord) toDomain() domuser.User {
	return domuser.User{
		ID:        r.ID,
		Email:     r.Email,
		FullName:  r.FullName,
		AvatarURL: r.AvatarURL,
		Phone:     r.Phone,
		Address:   r.Address,
		IsAdmin:   r.IsAdmin,
		CreatedAt: r.CreatedAt,
	}
}
