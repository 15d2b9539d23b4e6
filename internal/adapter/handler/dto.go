package handler

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/cloth-store/internal/core/domain"
	"github.com/rl1809/cloth-store/internal/core/service"
)

// Request and response bodies shared by the HTTP and gRPC transports.

const dateLayout = "2006-01-02 15:04:05"

type AddItemRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

type ItemResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Empty bool           `json:"empty"`
}

type UpdateStockRequest struct {
	ItemID int `json:"item_id,omitempty"`
	Delta  int `json:"delta"`
}

type UpdateStockResponse struct {
	ItemID  int    `json:"item_id"`
	Stock   int    `json:"stock"`
	Clamped bool   `json:"clamped"`
	Warning string `json:"warning,omitempty"`
}

type SearchItemsRequest struct {
	Query string `json:"query"`
	Field string `json:"field"`
}

type AddCustomerRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type CustomerResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Empty     bool               `json:"empty"`
}

type PurchaseLineRequest struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

type RecordPurchaseRequest struct {
	RequestID  string                `json:"request_id,omitempty"`
	CustomerID int                   `json:"customer_id"`
	Items      []PurchaseLineRequest `json:"items"`
}

type PurchaseLineResponse struct {
	ItemID    int    `json:"item_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type PurchaseResponse struct {
	ID           int                    `json:"id"`
	CustomerID   int                    `json:"customer_id"`
	CustomerName string                 `json:"customer_name"`
	Items        []PurchaseLineResponse `json:"items"`
	Date         string                 `json:"date"`
	Total        string                 `json:"total"`
}

type RecordPurchaseResponse struct {
	Recorded bool              `json:"recorded"`
	Message  string            `json:"message"`
	Purchase *PurchaseResponse `json:"purchase,omitempty"`
}

type PurchaseListResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
	Empty     bool               `json:"empty"`
}

type ListRequest struct{}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toItemResponse(item domain.Item) ItemResponse {
	return ItemResponse{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Size:     item.Size,
		Color:    item.Color,
		Price:    item.Price.StringFixed(2),
		Stock:    item.Stock,
	}
}

func toItemList(items []domain.Item) ItemListResponse {
	resp := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Empty: len(items) == 0}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	return resp
}

func toStockResponse(update service.StockUpdate) UpdateStockResponse {
	resp := UpdateStockResponse{ItemID: update.ItemID, Stock: update.Stock, Clamped: update.Clamped}
	if update.Clamped {
		resp.Warning = "stock cannot be negative, set to 0"
	}
	return resp
}

func toCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{ID: c.ID, Name: c.Name, Contact: c.Contact}
}

func toCustomerList(customers []domain.Customer) CustomerListResponse {
	resp := CustomerListResponse{Customers: make([]CustomerResponse, 0, len(customers)), Empty: len(customers) == 0}
	for _, c := range customers {
		resp.Customers = append(resp.Customers, toCustomerResponse(c))
	}
	return resp
}

func toPurchaseResponse(p domain.Purchase, total decimal.Decimal) PurchaseResponse {
	lines := make([]PurchaseLineResponse, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, PurchaseLineResponse{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
		})
	}
	return PurchaseResponse{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		CustomerName: p.CustomerName,
		Items:        lines,
		Date:         p.CreatedAt.Format(dateLayout),
		Total:        total.StringFixed(2),
	}
}

func toLineItems(lines []PurchaseLineRequest) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.LineItem{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return items
}
