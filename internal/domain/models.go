package domain

// Product товар каталога
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Buyer покупатель. Телефон хранится числом, поэтому ведущие нули и "+" теряются.
type Buyer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone int64  `json:"phone"`
}

// Order заказ покупателя. Timestamp в секундах Unix, выставляется сервером.
type Order struct {
	ID         int64  `json:"id"`
	Timestamp  int64  `json:"timestamp"`
	CustomerID int64  `json:"customer_id"`
	Notes      string `json:"notes"`
}
