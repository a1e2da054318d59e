package handler

// statusResponse is the generic acknowledgement envelope.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// errorResponse documents the error envelope for swagger; the actual
// rendering happens in the central HTTP error handler.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updatePasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type magicLinkRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	RedirectURL string `json:"redirect_url" validate:"required,url"`
}

type createProductRequest struct {
	Brand        string  `json:"brand"`
	StyleID      string  `json:"style_id"`
	Name         string  `json:"name" validate:"required"`
	Slug         string  `json:"slug" validate:"required"`
	Description  string  `json:"description"`
	Colorway     string  `json:"colorway"`
	RetailPrice  float64 `json:"retail_price" validate:"gte=0"`
	Gender       string  `json:"gender" validate:"omitempty,oneof=men women unisex kids"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

type placeBidRequest struct {
	VariantID string  `json:"variant_id" validate:"required"`
	Price     float64 `json:"price"      validate:"required,gt=0"`
}

type placeAskRequest struct {
	VariantID string  `json:"variant_id" validate:"required"`
	Price     float64 `json:"price"      validate:"required,gt=0"`
	Condition string  `json:"condition"  validate:"required,oneof=new used"`
	IsInstant bool    `json:"is_instant"`
}

type recordSaleRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	BuyerID   string  `json:"buyer_id"`
	SalePrice float64 `json:"sale_price" validate:"required,gt=0"`
}

type watchRequest struct {
	VariantID       string  `json:"variant_id" validate:"required"`
	DesiredPrice    float64 `json:"desired_price" validate:"gte=0"`
	NotifyOnPrice   bool    `json:"notify_on_price"`
	NotifyOnRestock bool    `json:"notify_on_restock"`
}
