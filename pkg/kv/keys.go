package kv

// Keys owned by the state managers. Each manager writes through to exactly
// one of these; reviews fan out per product.
const (
	KeyCart            = "cart"
	KeyWishlist        = "wishlist"
	KeyOrders          = "orders"
	KeyUser            = "user"
	KeyLoggedIn        = "isLoggedIn"
	KeyRecentlyViewed  = "recentlyViewed"
	KeyCompareProducts = "compareProducts"
	KeyRedirectPath    = "redirectPath"
)

// ReviewsKey returns the per-product review list key.
func ReviewsKey(productID string) string {
	return "reviews-" + productID
}
