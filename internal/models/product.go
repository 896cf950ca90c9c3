package models

// Product represents a single perfume in the catalog. Products are loaded
// as a snapshot from the spreadsheet backend and never mutated in place;
// each catalog refresh replaces the previous snapshot wholesale. Rows
// without an id or a name are dropped during decoding, so a Product that
// exists is always identifiable.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	InStock     bool    `json:"inStock"`
}

// CartItem pairs a product with a positive quantity. The cart store keeps
// exactly one CartItem per product id.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// SampleProducts is the built-in fallback catalog, returned whenever the
// remote catalog cannot be fetched or parsed.
var SampleProducts = []Product{
	{
		ID:          "1",
		Name:        "Chanel No. 5",
		Description: "The world's most iconic fragrance with notes of ylang-ylang, rose, and sandalwood.",
		Price:       150,
		ImageURL:    "https://images.unsplash.com/photo-1541643600914-78b084683601?w=400&h=400&fit=crop&crop=center",
		InStock:     true,
	},
	{
		ID:          "2",
		Name:        "Dior Sauvage",
		Description: "A fresh and woody fragrance with bergamot, pepper, and ambroxan.",
		Price:       120,
		ImageURL:    "/images/fragrance.jpg",
		InStock:     true,
	},
	{
		ID:          "3",
		Name:        "Tom Ford Black Orchid",
		Description: "A luxurious and sensual fragrance with black orchid, spice, and dark chocolate.",
		Price:       180,
		ImageURL:    "https://images.unsplash.com/photo-1594035910387-fea47794261f?w=400&h=400&fit=crop&crop=center",
		InStock:     false,
	},
	{
		ID:          "4",
		Name:        "Creed Aventus",
		Description: "A sophisticated blend of pineapple, birch, and musk.",
		Price:       350,
		ImageURL:    "https://images.unsplash.com/photo-1615634260167-c8cdede054de?w=400&h=400&fit=crop&crop=center",
		InStock:     true,
	},
	{
		ID:          "5",
		Name:        "Yves Saint Laurent Black Opium",
		Description: "An addictive gourmand fragrance with coffee, vanilla, and white flowers.",
		Price:       110,
		ImageURL:    "https://images.unsplash.com/photo-1592945403244-b3fbafd7f539?w=400&h=400&fit=crop&crop=center",
		InStock:     false,
	},
	{
		ID:          "6",
		Name:        "Maison Margiela Replica Jazz Club",
		Description: "A warm and cozy fragrance evoking the atmosphere of a jazz club.",
		Price:       140,
		ImageURL:    "https://images.unsplash.com/photo-1563170351-be82bc888aa4?w=400&h=400&fit=crop&crop=center",
		InStock:     true,
	},
}

// FallbackCatalog returns a fresh copy of the sample catalog so callers
// can never mutate the shared slice.
func FallbackCatalog() []Product {
	out := make([]Product, len(SampleProducts))
	copy(out, SampleProducts)
	return out
}
