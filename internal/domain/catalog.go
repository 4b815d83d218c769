package domain

// Product is a catalog entry owned by the commerce backend. The bot never
// persists a local copy; every render fetches it on demand.
type Product struct {
	ID          string `json:"id"`
	SKU         string `json:"sku,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageID     string `json:"image_id,omitempty"`
}

// Token is a short-lived commerce bearer credential. It is acquired fresh for
// every inbound event and never cached across events.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}
