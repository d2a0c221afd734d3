package commerce

// Address is the Woo billing/shipping block. Billing carries email and phone;
// shipping does not, but the platform tolerates the extra fields.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// MetaData is a free-form key/value attached to customers and orders.
type MetaData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// CustomerRequest is the payload for creating or updating a customer.
type CustomerRequest struct {
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Username  string     `json:"username,omitempty"`
	Billing   *Address   `json:"billing,omitempty"`
	Shipping  *Address   `json:"shipping,omitempty"`
	MetaData  []MetaData `json:"meta_data,omitempty"`
}

// Customer is the platform's customer record.
type Customer struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Username    string     `json:"username"`
	OrdersCount int        `json:"orders_count"`
	TotalSpent  string     `json:"total_spent"`
	Billing     *Address   `json:"billing,omitempty"`
	Shipping    *Address   `json:"shipping,omitempty"`
	MetaData    []MetaData `json:"meta_data,omitempty"`
}

// OrderLineItem is one order line. Monetary fields are decimal strings,
// matching the platform's wire format.
type OrderLineItem struct {
	ProductID int64  `json:"product_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total,omitempty"`
	Subtotal  string `json:"subtotal,omitempty"`
}

// CouponLine references a coupon applied to an order.
type CouponLine struct {
	Code string `json:"code"`
}

// ShippingLine is one shipping charge on an order.
type ShippingLine struct {
	MethodTitle string `json:"method_title,omitempty"`
	MethodID    string `json:"method_id,omitempty"`
	Total       string `json:"total"`
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	Status             string          `json:"status,omitempty"`
	Currency           string          `json:"currency,omitempty"`
	CustomerID         int64           `json:"customer_id,omitempty"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	PaymentMethodTitle string          `json:"payment_method_title,omitempty"`
	SetPaid            bool            `json:"set_paid,omitempty"`
	Billing            *Address        `json:"billing,omitempty"`
	Shipping           *Address        `json:"shipping,omitempty"`
	LineItems          []OrderLineItem `json:"line_items"`
	ShippingLines      []ShippingLine  `json:"shipping_lines,omitempty"`
	CouponLines        []CouponLine    `json:"coupon_lines,omitempty"`
	MetaData           []MetaData      `json:"meta_data,omitempty"`
}

// Order is the platform's order record.
type Order struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	CustomerID    int64           `json:"customer_id"`
	PaymentMethod string          `json:"payment_method"`
	Total         string          `json:"total"`
	TotalTax      string          `json:"total_tax"`
	ShippingTotal string          `json:"shipping_total"`
	DiscountTotal string          `json:"discount_total"`
	LineItems     []OrderLineItem `json:"line_items"`
	Billing       *Address        `json:"billing,omitempty"`
	Shipping      *Address        `json:"shipping,omitempty"`
}

// apiError is the platform's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
